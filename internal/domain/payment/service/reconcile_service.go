package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	orderModel "khanmall/internal/domain/order/model"
	"khanmall/internal/domain/payment/model"
	"khanmall/pkg/logger"
	"khanmall/pkg/metrics"
	"khanmall/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// refPattern matches an order reference anywhere in free SMS text,
// case-insensitively.
var refPattern = regexp.MustCompile(`(?i)` + utils.ReferencePrefix + `\d{8}`)

// Result is the outcome of one webhook delivery. None of these are errors:
// the upstream SMS gateway is untrusted and unreliable, so unmatched or
// duplicate deliveries are ordinary inputs.
type Result struct {
	Outcome   string `json:"outcome"`
	Reference string `json:"reference,omitempty"`
}

// OrderSettler is the slice of the order repository the engine drives.
type OrderSettler interface {
	SettleByReference(reference string, paidAt time.Time) (int64, error)
	GetByReference(reference string) (*orderModel.Order, error)
}

// Auditor records the delivery asynchronously.
type Auditor interface {
	Record(content, sender, result, reference string)
}

type ReconcileService interface {
	// Reconcile extracts an order reference from the SMS body and settles the
	// matching pending order exactly once. The returned error is reserved for
	// storage failures; every parse/match outcome is a Result.
	Reconcile(content, sender string) (Result, error)
}

type reconcileService struct {
	orders  OrderSettler
	auditor Auditor
	now     func() time.Time
}

func NewReconcileService(orders OrderSettler, auditor Auditor) ReconcileService {
	return &reconcileService{orders: orders, auditor: auditor, now: time.Now}
}

func (s *reconcileService) Reconcile(content, sender string) (Result, error) {
	match := refPattern.FindString(content)
	if match == "" {
		return s.finish(content, sender, Result{Outcome: model.ResultNoMatch})
	}
	reference := strings.ToUpper(match)

	// The settle is one conditional UPDATE keyed on payment_status = pending.
	// A duplicate delivery (retried webhook, re-forwarded SMS) finds zero
	// matching rows and falls through to the disambiguation below.
	affected, err := s.orders.SettleByReference(reference, s.now())
	if err != nil {
		return Result{}, err
	}
	if affected > 0 {
		logger.Log.Info("payment reconciled",
			zap.String("reference", reference), zap.String("sender", sender))
		return s.finish(content, sender, Result{Outcome: model.ResultReconciled, Reference: reference})
	}

	if _, err := s.orders.GetByReference(reference); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.finish(content, sender, Result{Outcome: model.ResultNoMatch, Reference: reference})
		}
		return Result{}, err
	}

	// The order exists but is no longer pending: settled earlier, by this
	// webhook's twin or by an admin.
	return s.finish(content, sender, Result{Outcome: model.ResultAlreadySettled, Reference: reference})
}

func (s *reconcileService) finish(content, sender string, r Result) (Result, error) {
	metrics.GetCollector().RecordReconciliation(r.Outcome)
	if r.Outcome != model.ResultReconciled {
		logger.Log.Info("webhook not reconciled",
			zap.String("outcome", r.Outcome),
			zap.String("reference", r.Reference),
			zap.String("sender", sender))
	}
	if s.auditor != nil {
		s.auditor.Record(content, sender, r.Outcome, r.Reference)
	}
	return r, nil
}
