package property

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params(name), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" geçersiz")
	}
	return id, nil
}
