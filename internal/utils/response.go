package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope shared by every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Meta    interface{} `json:"meta,omitempty"`
}

// SendSuccess writes a 200 envelope.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return write(c, fiber.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

// SendSuccessWithStatus writes a success envelope with a custom status, e.g. 201 after a submission.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	return write(c, status, APIResponse{Success: true, Message: message, Data: data})
}

// SendSuccessWithMeta writes a 200 envelope carrying response metadata such as cache state.
func SendSuccessWithMeta(c *fiber.Ctx, message string, data interface{}, meta interface{}) error {
	return write(c, fiber.StatusOK, APIResponse{Success: true, Message: message, Data: data, Meta: meta})
}

// SendError writes a failure envelope without data.
func SendError(c *fiber.Ctx, status int, message string) error {
	return write(c, status, APIResponse{Message: message})
}

// SendFailure writes a failure envelope that still carries a diagnostic payload.
func SendFailure(c *fiber.Ctx, status int, message string, data interface{}) error {
	return write(c, status, APIResponse{Message: message, Data: data})
}

func write(c *fiber.Ctx, status int, body APIResponse) error {
	if status == 0 {
		status = fiber.StatusOK
	}
	if body.Message == "" {
		if body.Success {
			body.Message = "success"
		} else {
			body.Message = "error"
		}
	}
	return c.Status(status).JSON(body)
}
