package handlers

import (
	"sync"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the ledger-specific binding tags to gin's validator.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("entrysource", func(fl validator.FieldLevel) bool {
			return domain.EntrySource(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("basis", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseBasis(fl.Field().String())
			return err == nil
		})
	})
}
