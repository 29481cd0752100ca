package server

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"vive-gamer/internal/game"
)

// maxMessageSize must stay well above the imageBase64 cap on inboundEvent;
// larger frames close the connection.
const maxMessageSize = 1 << 20

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
			return game.ValidNickname(fl.Field().String())
		})
		_ = engine.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
			_, ok := game.ParseMode(fl.Field().String())
			return ok
		})
	})
}
