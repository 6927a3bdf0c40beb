package support

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fjod/gamingmarket/internal/notify"
	"github.com/fjod/gamingmarket/internal/validation"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const MsgReceived = "Your support request has been received successfully."

type IssueType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var IssueTypes = []IssueType{
	{Value: "order", Label: "Order / Invoice Problem"},
	{Value: "delivery", Label: "Delivery / Cargo Problem"},
	{Value: "product", Label: "Product / Defect Problem"},
	{Value: "payment", Label: "Payment / Refund Problem"},
	{Value: "account", Label: "Account / Login Problem"},
	{Value: "other", Label: "Other"},
}

type Request struct {
	IssueType  string `json:"issueType" validate:"required,oneof=order delivery product payment account other"`
	OtherIssue string `json:"otherIssue" validate:"required_if=IssueType other"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,storemail"`
	Phone      string `json:"phone" validate:"required,gsmphone"`
	OrderID    string `json:"orderId,omitempty"`
	Details    string `json:"details" validate:"required"`
}

var messages = map[string]string{
	"issueType":      "Issue type is required.",
	"otherIssue":     "Please describe your issue.",
	"name":           "Full name is required.",
	"email.required": "E-mail is required.",
	"email":          "Enter a valid e-mail address.",
	"phone.required": "Phone number is required.",
	"phone":          "Phone number must be 11 digits and start with 0.",
	"details":        "Please describe your problem.",
}

var ErrInvalidRequest = errors.New("invalid support request")

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%v: %s", ErrInvalidRequest, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

type Receipt struct {
	Request    Request   `json:"request"`
	ReceivedAt time.Time `json:"received_at"`
}

// Desk accepts support requests. Nothing is stored; accepted requests are
// written to the log.
type Desk struct {
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

func NewDesk(log *zap.Logger) *Desk {
	return &Desk{
		validate: validation.New(nil),
		log:      log,
		now:      time.Now,
	}
}

// Validate normalizes the phone to digits and the email to its trimmed form,
// then checks every field.
func (d *Desk) Validate(req Request) (Request, error) {
	req.Phone = validation.Digits(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	if req.IssueType != "other" {
		req.OtherIssue = ""
	}

	if err := d.validate.Struct(req); err != nil {
		return req, &ValidationError{Fields: validation.FieldErrors(err, messages)}
	}
	return req, nil
}

// Submit validates req, logs it and acknowledges it on notifier.
func (d *Desk) Submit(ctx context.Context, req Request, notifier notify.Notifier) (*Receipt, error) {
	req, err := d.Validate(req)
	if err != nil {
		return nil, err
	}

	d.log.Info("support request submitted",
		zap.String("issue_type", req.IssueType),
		zap.String("other_issue", req.OtherIssue),
		zap.String("name", req.Name),
		zap.String("email", req.Email),
		zap.String("phone", req.Phone),
		zap.String("order_id", req.OrderID),
		zap.String("details", req.Details),
	)
	notifier.Show(notify.SeveritySuccess, MsgReceived)

	return &Receipt{Request: req, ReceivedAt: d.now()}, nil
}
