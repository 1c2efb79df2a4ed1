package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// FieldError 描述一个未通过校验的字段。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RegisterValidators 注册自定义规则，并让校验错误使用 json/form 字段名。
// 启动服务前调用一次。
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return fmt.Errorf("register notblank: %w", err)
	}
	if err := v.RegisterValidation("bcryptmax", bcryptMax); err != nil {
		return fmt.Errorf("register bcryptmax: %w", err)
	}
	if err := v.RegisterValidation("timestamp", validTimestamp); err != nil {
		return fmt.Errorf("register timestamp: %w", err)
	}
	return nil
}

// MaxPasswordBytes 为 bcrypt 可处理的最大输入字节数。
const MaxPasswordBytes = 72

// bcryptMax 按字节而非字符限制长度，多字节字符会更早触顶。
func bcryptMax(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}

func validTimestamp(fl validator.FieldLevel) bool {
	_, err := ParseTimestamp(fl.Field().String())
	return err == nil
}

// FieldErrors 将绑定错误展开为字段级信息；非校验错误（如 JSON 格式错误）返回 nil。
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "bcryptmax":
		return fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)
	case "timestamp":
		return "must be a date (YYYY-MM-DD) or a timestamp (YYYY-MM-DDTHH:MM:SS, optional offset)"
	case "eq":
		return fmt.Sprintf("must equal %q", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
