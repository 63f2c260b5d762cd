package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/docshield/docshield/pkg/rule"
)

// createShareBody 模拟分享创建请求的校验标签.
type createShareBody struct {
	DocumentID string `rule:"required,uuid4"`
	ExpiresIn  string `rule:"omitempty,oneof=1h 24h 7d never"`
	Password   string `rule:"omitempty,min=4"`
}

func TestEngineNotNil(t *testing.T) {
	if rule.Engine() == nil {
		t.Fatal("Engine() returned nil")
	}
}

func TestValidateStruct(t *testing.T) {
	valid := createShareBody{
		DocumentID: "8b7df143-7754-4d70-8e58-0e17b1c6e1a1",
		ExpiresIn:  "24h",
	}
	if err := rule.ValidateStruct(valid); err != nil {
		t.Errorf("valid body rejected: %v", err)
	}

	if err := rule.ValidateStruct(createShareBody{ExpiresIn: "24h"}); err == nil {
		t.Error("missing document id accepted")
	}

	bad := createShareBody{
		DocumentID: "8b7df143-7754-4d70-8e58-0e17b1c6e1a1",
		ExpiresIn:  "3d",
	}
	if err := rule.ValidateStruct(bad); err == nil {
		t.Error("unsupported expiry preset accepted")
	}
}

func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("owner@example.com", "required,email"); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}

	if err := rule.ValidateVar("not-an-email", "required,email"); err == nil {
		t.Error("invalid email accepted")
	}

	if err := rule.ValidateVar("approved", "oneof=approved rejected flagged"); err != nil {
		t.Errorf("valid decision rejected: %v", err)
	}

	if err := rule.ValidateVar("maybe", "oneof=approved rejected flagged"); err == nil {
		t.Error("unknown decision accepted")
	}
}

func TestErrorsExposesFieldMap(t *testing.T) {
	err := rule.ValidateStruct(createShareBody{ExpiresIn: "3d", Password: "ab"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields := rule.Errors(err)
	if len(fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(fields), fields)
	}

	if _, ok := fields["DocumentID"]; !ok {
		t.Error("DocumentID error missing")
	}

	if got := fields["Password"]; got != "min=4" {
		t.Errorf("Password error = %q, want min=4", got)
	}

	// 非验证类错误返回 nil
	if rule.Errors(errNotValidation{}) != nil {
		t.Error("non-validation error should yield nil map")
	}
}

type errNotValidation struct{}

func (errNotValidation) Error() string { return "boom" }

func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("sha256hex", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok || len(s) != 64 {
			return false
		}

		for _, r := range s {
			if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
				return false
			}
		}

		return true
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	good := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	if err := rule.ValidateVar(good, "sha256hex"); err != nil {
		t.Errorf("valid digest rejected: %v", err)
	}

	if err := rule.ValidateVar("abc123", "sha256hex"); err == nil {
		t.Error("short digest accepted")
	}
}

func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("note_text", "omitempty,max=1000")

	if err := rule.ValidateVar("looks legitimate", "note_text"); err != nil {
		t.Errorf("valid note rejected: %v", err)
	}
}
