package orders

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/neurobridge-commons/internal/commons/args"
	"github.com/yungbote/neurobridge-commons/internal/commons/contract"
	"github.com/yungbote/neurobridge-commons/internal/commons/query"
	types "github.com/yungbote/neurobridge-commons/internal/domain/orders"
)

type CreateOrderArgs struct {
	Number   string    `mapstructure:"number" validate:"required,min=3"`
	Status   string    `mapstructure:"status" validate:"oneof=pending wip completed hold canceled"`
	Customer string    `mapstructure:"customer" validate:"max=120"`
	DueAt    time.Time `mapstructure:"due_at"`
}

type OrderIndexArgs struct {
	Status     string `mapstructure:"status" validate:"omitempty,oneof=pending wip completed hold canceled"`
	Search     string `mapstructure:"search"`
	ShowHidden bool   `mapstructure:"show_hidden"`
	Sort       string `mapstructure:"sort" validate:"oneof=number status due_at created_at"`
	Direction  string `mapstructure:"direction" validate:"omitempty,sortdir"`
	Page       int    `mapstructure:"page" validate:"gte=0"`
	PageSize   int    `mapstructure:"page_size" validate:"gte=0,lte=100"`
}

var blockedWords = []string{"darn", "heck", "frak"}

func containsProfanity(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range blockedWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func newCreateOrderArgs() (*args.Schema[CreateOrderArgs], error) {
	return args.Define("create_order", func(b *args.Builder[CreateOrderArgs]) {
		b.Default("status", types.StatusPending)
		b.ValidatesWith(func(v *CreateOrderArgs, errs *args.Errors) {
			if containsProfanity(v.Customer) {
				errs.Add("customer", "contains inappropriate language")
			}
		})
	})
}

func newOrderIndexArgs() (*args.Schema[OrderIndexArgs], error) {
	return args.Define("order_index", func(b *args.Builder[OrderIndexArgs]) {
		b.Default("sort", "number")
		b.RegisterValidation("sortdir", func(fl validator.FieldLevel) bool {
			return query.CleanSortDirection(fl.Field().String()) != ""
		}, "{0} must be asc or desc")
	})
}

// hideOrderContract uses strict presence so hidden=false unhides an order.
func hideOrderContract() *contract.Contract {
	return contract.New(func(b *contract.Builder) {
		b.Presence(contract.Strict)
		b.Attribute("number", contract.TypeString, contract.Required())
		b.Attribute("hidden", contract.TypeObject, contract.Default(true))
	})
}
