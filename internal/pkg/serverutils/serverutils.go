package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation on a request DTO.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func SuccessResponse(message string, data interface{}) fiber.Map {
	return fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	}
}

// ErrorHandlerMiddleware converts uncaught handler errors into a uniform
// JSON error body. fiber.Error keeps its status code; everything else is a
// 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}
		return ctx.Status(code).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}
}
