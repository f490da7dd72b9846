package checkout

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"stationers/internal/cart"
	"stationers/internal/domain"
	"stationers/internal/remote"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCheckoutInFlight: the same cart is already being submitted.
	ErrCheckoutInFlight = errors.New("checkout already in progress")
)

var mobileRe = regexp.MustCompile(`^[6-9]\d{9}$`)

// Form данные покупателя с формы оформления заказа
type Form struct {
	CustomerName string `json:"customer_name" validate:"required,min=2"`
	Phone        string `json:"phone" validate:"required,in_mobile"`
	Address      string `json:"address" validate:"required,min=10"`
}

// ValidationError ошибки по полям формы; ключ: json-имя поля
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

// messages[field][tag]
var messages = map[string]map[string]string{
	"customer_name": {"required": "Name is required", "min": "Name must be at least 2 characters"},
	"phone":         {"required": "Phone number is required", "in_mobile": "Enter a valid 10-digit Indian mobile number"},
	"address":       {"required": "Address is required", "min": "Please enter a complete address"},
}

// Placer отправляет заказ; реализуется query.Hooks
type Placer interface {
	PlaceOrder(ctx context.Context, req remote.PlaceOrderRequest) (*domain.Order, error)
}

// Confirmation результат успешного оформления
type Confirmation struct {
	OrderID     int64  `json:"order_id"`
	TotalAmount int64  `json:"total_amount"`
	Total       string `json:"total"`
}

type Service struct {
	placer   Placer
	validate *validator.Validate

	mu       sync.Mutex
	inFlight map[*cart.Cart]struct{}
}

func NewService(placer Placer) *Service {
	v, err := newValidator()
	if err != nil {
		panic(fmt.Sprintf("checkout: %v", err))
	}
	return &Service{placer: placer, validate: v, inFlight: make(map[*cart.Cart]struct{})}
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	err := v.RegisterValidation("in_mobile", func(fl validator.FieldLevel) bool {
		return mobileRe.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("register in_mobile rule: %w", err)
	}
	return v, nil
}

// Validate trims the form in place and checks it.
func (s *Service) Validate(f *Form) error {
	f.CustomerName = strings.TrimSpace(f.CustomerName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)

	err := s.validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate checkout form: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = "invalid value"
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}

// PlaceOrder validates the form, submits the cart once and, on success, removes
// the submitted lines from it. On any failure the cart is left as it was.
// A second submission of a cart while the first is pending gets ErrCheckoutInFlight.
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Cart, f Form) (*Confirmation, error) {
	if err := s.Validate(&f); err != nil {
		return nil, err
	}
	if !s.begin(c) {
		return nil, ErrCheckoutInFlight
	}
	defer s.end(c)

	lines := c.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	req := remote.PlaceOrderRequest{
		CustomerName: f.CustomerName,
		Phone:        f.Phone,
		Address:      f.Address,
		Items:        make([]domain.OrderItem, 0, len(lines)),
	}
	for _, li := range lines {
		req.Items = append(req.Items, domain.OrderItem{
			ProductID: li.Product.ID,
			Quantity:  li.Quantity,
			Price:     li.Product.Price,
		})
		req.TotalAmount += li.Subtotal()
	}

	order, err := s.placer.PlaceOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	c.RemoveLines(lines)
	return &Confirmation{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Total:       domain.FormatPrice(order.TotalAmount),
	}, nil
}

func (s *Service) begin(c *cart.Cart) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[c]; busy {
		return false
	}
	s.inFlight[c] = struct{}{}
	return true
}

func (s *Service) end(c *cart.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, c)
}
