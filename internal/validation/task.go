package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// validate is safe for concurrent use and caches parsed tags.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("text", isText); err != nil {
		// ALLOW-PANIC: the tag name and function are fixed at compile time
		panic(err)
	}
	return v
}

// isText accepts strings every store can hold: valid UTF-8 without NUL.
func isText(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// TaskInput is the raw create or update body. A nil field was absent from
// the request; a field sent as null is present and empty.
type TaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}

// UnmarshalJSON decodes a task body. Null is read as "", so it is checked
// like any other supplied value rather than skipped.
func (in *TaskInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title       json.RawMessage `json:"title"`
		Description json.RawMessage `json:"description"`
		Status      json.RawMessage `json:"status"`
		Priority    json.RawMessage `json:"priority"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []struct {
		name string
		raw  json.RawMessage
		dst  **string
	}{
		{"title", raw.Title, &in.Title},
		{"description", raw.Description, &in.Description},
		{"status", raw.Status, &in.Status},
		{"priority", raw.Priority, &in.Priority},
	}
	for _, f := range fields {
		v, err := decodeText(f.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return nil
}

func decodeText(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var s string
	if string(raw) == "null" {
		return &s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// rule binds a validator tag string to the messages reported for each
// failing tag.
type rule struct {
	field    string
	tags     string
	messages map[string]string
}

var (
	statusMessage   = "Status must be pending, in-progress, or completed"
	priorityMessage = "Priority must be low, medium, or high"

	createTitleRule = rule{
		field: "title",
		tags:  "text,required,max=200",
		messages: map[string]string{
			"text":     "Title contains invalid characters",
			"required": "Title is required",
			"max":      "Title cannot exceed 200 characters",
		},
	}
	updateTitleRule = rule{
		field: "title",
		tags:  "text,required,max=200",
		messages: map[string]string{
			"text":     "Title contains invalid characters",
			"required": "Title cannot be empty",
			"max":      "Title cannot exceed 200 characters",
		},
	}
	descriptionRule = rule{
		field: "description",
		tags:  "text,max=1000",
		messages: map[string]string{
			"text": "Description contains invalid characters",
			"max":  "Description cannot exceed 1000 characters",
		},
	}
	searchRule = rule{
		field:    "search",
		tags:     "text",
		messages: map[string]string{"text": "Search contains invalid characters"},
	}
	statusRule = rule{
		field:    "status",
		tags:     "oneof=pending in-progress completed",
		messages: map[string]string{"oneof": statusMessage},
	}
	priorityRule = rule{
		field:    "priority",
		tags:     "oneof=low medium high",
		messages: map[string]string{"oneof": priorityMessage},
	}
)

// check runs r against value and records a violation in errs on failure.
// It reports whether the value passed.
func (r rule) check(value string, errs *domain.ValidationErrors) bool {
	err := validate.Var(value, r.tags)
	if err == nil {
		return true
	}

	msg := "Invalid value"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if m, ok := r.messages[verrs[0].Tag()]; ok {
			msg = m
		}
	}
	errs.Add(r.field, msg)
	return false
}

// ListQuery validates the query parameters of a list request.
// A status or priority parameter that is present must be a valid value,
// even when empty. The search term is trimmed; an empty term is ignored.
func ListQuery(values url.Values) (domain.TaskQuery, error) {
	var (
		q    domain.TaskQuery
		errs domain.ValidationErrors
	)

	if values.Has("status") {
		raw := values.Get("status")
		if statusRule.check(raw, &errs) {
			st := mustStatus(raw)
			q.Status = &st
		}
	}

	if values.Has("priority") {
		raw := values.Get("priority")
		if priorityRule.check(raw, &errs) {
			p := mustPriority(raw)
			q.Priority = &p
		}
	}

	if search := strings.TrimSpace(values.Get("search")); searchRule.check(search, &errs) {
		q.Search = search
	}

	if err := errs.Err(); err != nil {
		return domain.TaskQuery{}, err
	}
	return q, nil
}

// CreateTask validates a create body. The title is required; every other
// field is optional and left nil when absent so that defaults can be
// applied downstream.
func CreateTask(in TaskInput) (domain.NewTask, error) {
	var (
		out  domain.NewTask
		errs domain.ValidationErrors
	)

	title := ""
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	if createTitleRule.check(title, &errs) {
		out.Title = title
	}

	out.Description = checkDescription(in.Description, &errs)
	out.Status = checkStatus(in.Status, &errs)
	out.Priority = checkPriority(in.Priority, &errs)

	if err := errs.Err(); err != nil {
		return domain.NewTask{}, err
	}
	return out, nil
}

// UpdateTask validates a partial update body. Every field is optional, but
// a title that is supplied must still be non-empty after trimming. A
// supplied empty description is a valid value and clears the field.
func UpdateTask(in TaskInput) (domain.TaskPatch, error) {
	var (
		out  domain.TaskPatch
		errs domain.ValidationErrors
	)

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if updateTitleRule.check(title, &errs) {
			out.Title = &title
		}
	}

	out.Description = checkDescription(in.Description, &errs)
	out.Status = checkStatus(in.Status, &errs)
	out.Priority = checkPriority(in.Priority, &errs)

	if err := errs.Err(); err != nil {
		return domain.TaskPatch{}, err
	}
	return out, nil
}

func checkDescription(raw *string, errs *domain.ValidationErrors) *string {
	if raw == nil {
		return nil
	}
	desc := strings.TrimSpace(*raw)
	if !descriptionRule.check(desc, errs) {
		return nil
	}
	return &desc
}

func checkStatus(raw *string, errs *domain.ValidationErrors) *domain.Status {
	if raw == nil || !statusRule.check(*raw, errs) {
		return nil
	}
	st := mustStatus(*raw)
	return &st
}

func checkPriority(raw *string, errs *domain.ValidationErrors) *domain.Priority {
	if raw == nil || !priorityRule.check(*raw, errs) {
		return nil
	}
	p := mustPriority(*raw)
	return &p
}

// mustStatus converts a value that already passed statusRule.
func mustStatus(s string) domain.Status {
	st, err := domain.ParseStatus(s)
	if err != nil {
		// ALLOW-PANIC: statusRule and domain.Statuses disagree
		panic(err)
	}
	return st
}

// mustPriority converts a value that already passed priorityRule.
func mustPriority(s string) domain.Priority {
	p, err := domain.ParsePriority(s)
	if err != nil {
		// ALLOW-PANIC: priorityRule and domain.Priorities disagree
		panic(err)
	}
	return p
}
