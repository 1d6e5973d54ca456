package validation

import (
	"testing"

	. "github.com/onsi/gomega"

	"tasktracker/internal/core/model/request"
	"tasktracker/internal/core/model/response"
)

func TestValidator_ReportsEveryField(t *testing.T) {
	RegisterTestingT(t)

	err := Validator.Struct(request.UserRequest{})

	Expect(err).ToNot(BeNil())
	Expect(FormatValidationErrors(err)).To(ConsistOf(
		response.ValidationError{Field: "username", Message: "username is required"},
		response.ValidationError{Field: "password", Message: "password is required"},
	))
}

func TestValidator_TodoRequest(t *testing.T) {
	RegisterTestingT(t)

	Expect(Validator.Struct(request.TodoRequest{Title: "ok", Deadline: "2024-05-01T10:00"})).To(Succeed())
	Expect(Validator.Struct(request.TodoRequest{Title: "ok", Labels: []string{"a", "b"}})).To(Succeed())

	err := Validator.Struct(request.TodoRequest{Deadline: "tomorrow", Labels: []string{"a", ""}})
	errs := FormatValidationErrors(err)

	Expect(errs).To(HaveLen(3))
	Expect(errs).To(ContainElement(response.ValidationError{Field: "title", Message: "title is required"}))
	Expect(errs).To(ContainElement(response.ValidationError{Field: "deadline", Message: "deadline must be a valid date or date-time"}))
	Expect(errs).To(ContainElement(HaveField("Field", "labels[1]")))
}

func TestValidator_BlankTitle(t *testing.T) {
	RegisterTestingT(t)

	blank := "   "

	Expect(FormatValidationErrors(Validator.Struct(request.TodoRequest{Title: blank}))).To(Equal([]response.ValidationError{
		{Field: "title", Message: "title must not be blank"},
	}))
	Expect(FormatValidationErrors(Validator.Struct(request.TodoDetailsRequest{Title: &blank}))).To(Equal([]response.ValidationError{
		{Field: "title", Message: "title must not be blank"},
	}))
}

func TestValidator_TodoDetailsRequest(t *testing.T) {
	RegisterTestingT(t)

	empty := ""
	title := "renamed"
	bad := "31/12/2024"

	Expect(Validator.Struct(request.TodoDetailsRequest{})).To(Succeed())
	Expect(Validator.Struct(request.TodoDetailsRequest{Title: &title, Deadline: &empty})).To(Succeed())

	blank := "   "
	Expect(Validator.Struct(request.TodoDetailsRequest{Deadline: &blank})).To(Succeed())

	err := Validator.Struct(request.TodoDetailsRequest{Title: &empty, Deadline: &bad})
	errs := FormatValidationErrors(err)

	Expect(errs).To(HaveLen(2))
	Expect(errs).To(ContainElement(response.ValidationError{Field: "title", Message: "title must not be empty"}))
	Expect(errs).To(ContainElement(HaveField("Field", "deadline")))
}

func TestValidator_CompletedIsRequired(t *testing.T) {
	RegisterTestingT(t)

	falsy := false

	Expect(Validator.Struct(request.TodoCompletedRequest{Completed: &falsy})).To(Succeed())
	Expect(FormatValidationErrors(Validator.Struct(request.TodoCompletedRequest{}))).To(Equal([]response.ValidationError{
		{Field: "completed", Message: "completed is required"},
	}))
}

func TestValidator_FilterRequest(t *testing.T) {
	RegisterTestingT(t)

	Expect(Validator.Struct(request.TodoFilterRequest{SortBy: "title", SortDirection: "desc"})).To(Succeed())

	errs := FormatValidationErrors(Validator.Struct(request.TodoFilterRequest{SortBy: "priority", SortDirection: "up"}))

	Expect(errs).To(HaveLen(2))
	Expect(errs).To(ContainElement(HaveField("Field", "sortBy")))
	Expect(errs).To(ContainElement(HaveField("Field", "sortDirection")))
}
