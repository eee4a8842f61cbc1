package validation

import (
	"errors"
	"testing"
)

type signUpForm struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func TestStruct_ReportsFieldsByJSONName(t *testing.T) {
	err := Struct(signUpForm{Email: "not-an-email", Password: "123", ConfirmPassword: "456"})

	var verrs Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected Errors, got %T %v", err, err)
	}

	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field] = fe.Message
	}
	if fields["email"] == "" || fields["password"] == "" || fields["confirmPassword"] != "does not match" {
		t.Fatalf("unexpected field errors: %+v", fields)
	}
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(signUpForm{Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
