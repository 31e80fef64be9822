package order

import "github.com/google/uuid"

// Event kinds for the request/response exchanges between the order saga and
// the owning subsystems. Requests are answered by exactly one subsystem; the
// Completed counterpart carries the same correlation id back.
const (
	KindStockDeductionRequested   = "stock.deduction.requested"
	KindStockDeductionCompleted   = "stock.deduction.completed"
	KindStockRestorationRequested = "stock.restoration.requested"
	KindStockRestorationCompleted = "stock.restoration.completed"

	KindBalanceDeductionRequested = "balance.deduction.requested"
	KindBalanceDeductionCompleted = "balance.deduction.completed"

	KindCouponUsageRequested       = "coupon.usage.requested"
	KindCouponUsageCompleted       = "coupon.usage.completed"
	KindCouponRestorationRequested = "coupon.restoration.requested"
	KindCouponRestorationCompleted = "coupon.restoration.completed"
)

type StockDeductionRequested struct {
	CorrID    string
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

func (e *StockDeductionRequested) Kind() string          { return KindStockDeductionRequested }
func (e *StockDeductionRequested) CorrelationID() string { return e.CorrID }

type StockDeductionCompleted struct {
	CorrID         string
	Success        bool
	ProductName    string
	UnitPriceCents int64
	ErrorMessage   string
}

func (e *StockDeductionCompleted) Kind() string          { return KindStockDeductionCompleted }
func (e *StockDeductionCompleted) CorrelationID() string { return e.CorrID }

type StockRestorationRequested struct {
	CorrID    string
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	Reason    string
}

func (e *StockRestorationRequested) Kind() string          { return KindStockRestorationRequested }
func (e *StockRestorationRequested) CorrelationID() string { return e.CorrID }

type StockRestorationCompleted struct {
	CorrID       string
	Success      bool
	ErrorMessage string
}

func (e *StockRestorationCompleted) Kind() string          { return KindStockRestorationCompleted }
func (e *StockRestorationCompleted) CorrelationID() string { return e.CorrID }

type BalanceDeductionRequested struct {
	CorrID      string
	OrderID     uuid.UUID
	UserID      uuid.UUID
	AmountCents int64
}

func (e *BalanceDeductionRequested) Kind() string          { return KindBalanceDeductionRequested }
func (e *BalanceDeductionRequested) CorrelationID() string { return e.CorrID }

type BalanceDeductionCompleted struct {
	CorrID                string
	Success               bool
	RemainingBalanceCents int64
	ErrorMessage          string
}

func (e *BalanceDeductionCompleted) Kind() string          { return KindBalanceDeductionCompleted }
func (e *BalanceDeductionCompleted) CorrelationID() string { return e.CorrID }

type CouponUsageRequested struct {
	CorrID           string
	OrderID          uuid.UUID
	UserID           uuid.UUID
	UserCouponID     uuid.UUID
	TotalAmountCents int64
}

func (e *CouponUsageRequested) Kind() string          { return KindCouponUsageRequested }
func (e *CouponUsageRequested) CorrelationID() string { return e.CorrID }

type CouponUsageCompleted struct {
	CorrID              string
	Success             bool
	DiscountAmountCents int64
	ErrorMessage        string
}

func (e *CouponUsageCompleted) Kind() string          { return KindCouponUsageCompleted }
func (e *CouponUsageCompleted) CorrelationID() string { return e.CorrID }

type CouponRestorationRequested struct {
	CorrID       string
	OrderID      uuid.UUID
	UserID       uuid.UUID
	UserCouponID uuid.UUID
	Reason       string
}

func (e *CouponRestorationRequested) Kind() string          { return KindCouponRestorationRequested }
func (e *CouponRestorationRequested) CorrelationID() string { return e.CorrID }

type CouponRestorationCompleted struct {
	CorrID       string
	Success      bool
	ErrorMessage string
}

func (e *CouponRestorationCompleted) Kind() string          { return KindCouponRestorationCompleted }
func (e *CouponRestorationCompleted) CorrelationID() string { return e.CorrID }
