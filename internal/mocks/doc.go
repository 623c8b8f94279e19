// Package mocks provides shared test doubles for the service interfaces the
// HTTP layer depends on: MockTaskService and MockJWTService.
//
// Each mock has one function field per interface method. A nil field falls
// back to the mock's default values (Task, Tasks, Err and so on), so a test
// only sets what it cares about:
//
//	svc := &mocks.MockTaskService{Err: service.ErrTaskNotFound}
//	h := api.NewTaskHandler(svc, log)
//
// MockTaskService also records the names of the methods it receives, which
// lets handler tests assert that invalid input never reached the service.
package mocks
