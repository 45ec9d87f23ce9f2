package billpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/logger"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MsgApplicationsImmutable rejects header updates that try to change applications
const MsgApplicationsImmutable = "Cannot modify payment applications. Void and create a new payment instead."

// Settings tunes the bill payment service
type Settings struct {
	PayablesAccountCode string
	VendorPaymentsLimit int
	DefaultPageSize     int
	MaxPageSize         int
	OutstandingCacheTTL time.Duration
	IdempotencyTTL      time.Duration
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		VendorPaymentsLimit: 50,
		DefaultPageSize:     50,
		MaxPageSize:         100,
		OutstandingCacheTTL: 5 * time.Minute,
		IdempotencyTTL:      24 * time.Hour,
	}
}

// BillPaymentService records, voids, clears and deletes vendor bill payments.
// Every write runs inside one TransactionScope so the payment, the bill
// balances, the vendor balance and the journal entry move together.
type BillPaymentService struct {
	billRepo    billpay.BillRepository
	vendorRepo  billpay.VendorRepository
	accountRepo billpay.AccountRepository
	paymentRepo billpay.PaymentRepository
	txScope     TransactionScope
	settings    Settings

	eventPublisher shared.EventPublisher
	billsCache     OutstandingBillsCache
	idempotency    shared.IdempotencyStore
	archive        CheckArchive
	metrics        *telemetry.BillPaymentMetrics
	now            func() time.Time
}

// NewBillPaymentService creates a new BillPaymentService
func NewBillPaymentService(
	billRepo billpay.BillRepository,
	vendorRepo billpay.VendorRepository,
	accountRepo billpay.AccountRepository,
	paymentRepo billpay.PaymentRepository,
	txScope TransactionScope,
	settings Settings,
) *BillPaymentService {
	return &BillPaymentService{
		billRepo:    billRepo,
		vendorRepo:  vendorRepo,
		accountRepo: accountRepo,
		paymentRepo: paymentRepo,
		txScope:     txScope,
		settings:    settings,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BillPaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetOutstandingBillsCache sets the cache consulted by FetchOutstandingBills
func (s *BillPaymentService) SetOutstandingBillsCache(cache OutstandingBillsCache) {
	s.billsCache = cache
}

// SetIdempotencyStore enables Idempotency-Key handling on submit
func (s *BillPaymentService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetCheckArchive enables archiving of printed check layouts
func (s *BillPaymentService) SetCheckArchive(archive CheckArchive) {
	s.archive = archive
}

// SetMetrics sets the bill payment metrics collector
func (s *BillPaymentService) SetMetrics(m *telemetry.BillPaymentMetrics) {
	s.metrics = m
}

// FetchOutstandingBills returns the vendor's open bills, oldest due date first
func (s *BillPaymentService) FetchOutstandingBills(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billpay.OutstandingBill, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill_payment", "fetch_outstanding_bills")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrVendorID, vendorID.String(),
	)

	var bills []billpay.OutstandingBill
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillPaymentLabels(telemetry.OperationLoadBills, ""), func(c context.Context) {
		if _, err := s.requireVendor(c, s.vendorRepo, tenantID, vendorID); err != nil {
			operationErr = err
			return
		}

		if s.billsCache != nil {
			cached, ok, err := s.billsCache.Get(c, tenantID, vendorID)
			if err != nil {
				logger.L(c).Warn("outstanding bills cache read failed", zap.Error(err))
			} else if ok {
				telemetry.AddEvent(span, "cache_hit")
				bills = cached
				return
			}
		}

		found, err := s.billRepo.FindOutstandingByVendor(c, tenantID, vendorID)
		if err != nil {
			operationErr = fmt.Errorf("failed to load outstanding bills: %w", err)
			return
		}
		bills = make([]billpay.OutstandingBill, 0, len(found))
		for i := range found {
			if found[i].IsOutstanding() {
				bills = append(bills, found[i].Snapshot())
			}
		}

		if s.billsCache != nil {
			if err := s.billsCache.Set(c, tenantID, vendorID, bills, s.settings.OutstandingCacheTTL); err != nil {
				logger.L(c).Warn("outstanding bills cache write failed", zap.Error(err))
			}
		}
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrBillCount, len(bills))
	return bills, nil
}

// SubmitPayment validates a draft and records it as a pending payment
func (s *BillPaymentService) SubmitPayment(ctx context.Context, tenantID uuid.UUID, req SubmitPaymentRequest) (*PaymentResponse, error) {
	start := s.now()
	ctx, span := telemetry.StartServiceSpan(ctx, "bill_payment", "submit")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrVendorID, req.VendorID.String(),
		telemetry.SpanAttrPaymentMethod, req.PaymentMethod,
		telemetry.SpanAttrAmount, req.PaymentAmount.String(),
		telemetry.SpanAttrBillCount, len(req.Applications),
	)

	var result *PaymentResponse
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillPaymentLabels(telemetry.OperationSubmitPayment, req.PaymentMethod), func(c context.Context) {
		result, operationErr = s.submit(c, tenantID, req)
	})

	elapsed := s.now().Sub(start)
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		s.metrics.RecordSubmission(ctx, tenantID, req.PaymentMethod, outcomeOf(operationErr), elapsed)
		return nil, operationErr
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, result.ID.String(),
		telemetry.SpanAttrPaymentNumber, result.PaymentNumber,
	)
	telemetry.SetOK(span)
	s.metrics.RecordSubmission(ctx, tenantID, result.PaymentMethod, telemetry.OutcomeSuccess, elapsed)
	logger.L(ctx).Info("bill payment recorded",
		zap.String("payment_number", result.PaymentNumber),
		zap.String("vendor_id", result.VendorID.String()),
		zap.String("amount", result.PaymentAmount.StringFixed(2)),
		zap.Int("applications", len(result.Applications)),
	)
	return result, nil
}

func (s *BillPaymentService) submit(ctx context.Context, tenantID uuid.UUID, req SubmitPaymentRequest) (*PaymentResponse, error) {
	draft, err := req.Draft()
	if err != nil {
		return nil, err
	}

	claim, err := s.claimIdempotencyKey(ctx, tenantID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if claim.replayID != nil {
		logger.L(ctx).Info("replaying bill payment for idempotency key",
			zap.String("payment_id", claim.replayID.String()))
		return s.GetPayment(ctx, tenantID, *claim.replayID)
	}
	committed := false
	defer func() {
		if !committed {
			claim.release(ctx)
		}
	}()

	bills, err := s.billRepo.FindByIDs(ctx, tenantID, applicationBillIDs(draft))
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	if errs := billpay.ValidatePayment(draft, vendorSnapshots(bills, draft.VendorID)); errs.HasErrors() {
		s.metrics.RecordValidationFailure(ctx, tenantID)
		return nil, errs
	}
	if err := s.checkSubmission(ctx, tenantID, draft, bills); err != nil {
		return nil, err
	}

	var payment *billpay.Payment
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := s.recordPayment(ctx, repos, tenantID, draft, req.CreatedBy)
		if err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	committed = true
	claim.complete(ctx, payment.ID)

	s.publishEvents(ctx, payment)
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// recordPayment does the transactional part of submit: number, payment,
// bill balances, vendor balance and GL entry.
func (s *BillPaymentService) recordPayment(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	draft billpay.PaymentDraft,
	createdBy *uuid.UUID,
) (*billpay.Payment, error) {
	bills, err := repos.BillRepo().FindByIDs(ctx, tenantID, applicationBillIDs(draft))
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	byID := make(map[uuid.UUID]*billpay.Bill, len(bills))
	for i := range bills {
		byID[bills[i].ID] = &bills[i]
	}

	number, err := repos.PaymentRepo().GeneratePaymentNumber(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate payment number: %w", err)
	}
	payment, err := billpay.NewPayment(tenantID, number, draft, vendorSnapshots(bills, draft.VendorID))
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		payment.SetCreatedBy(*createdBy)
	}

	for _, app := range payment.Applications {
		bill := byID[app.BillID]
		if err := bill.ApplyPayment(app.AmountApplied, payment.PaymentDate); err != nil {
			return nil, err
		}
		if err := repos.BillRepo().SaveWithLock(ctx, bill); err != nil {
			return nil, fmt.Errorf("failed to update bill %s: %w", bill.BillNumber, err)
		}
	}

	vendor, err := s.requireVendor(ctx, repos.VendorRepo(), tenantID, payment.VendorID)
	if err != nil {
		return nil, err
	}
	vendor.RecordPayment(payment.TotalApplied())
	if err := repos.VendorRepo().SaveWithLock(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to update vendor balance: %w", err)
	}

	payables, err := s.findPayablesAccount(ctx, repos.AccountRepo(), tenantID)
	if err != nil {
		return nil, err
	}
	if payables != nil {
		entry, err := billpay.NewBillPaymentEntry(payment, payables.ID)
		if err != nil {
			return nil, err
		}
		if err := repos.JournalRepo().Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to post journal entry: %w", err)
		}
		payment.AttachJournalEntry(entry.ID)
	} else {
		logger.L(ctx).Warn("no accounts payable account configured; journal entry skipped",
			zap.String("payment_number", payment.PaymentNumber))
	}

	if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	return payment, nil
}

// checkSubmission runs the server-side business rules that the form
// validator cannot see: vendor and account state and bill ownership.
func (s *BillPaymentService) checkSubmission(ctx context.Context, tenantID uuid.UUID, draft billpay.PaymentDraft, bills []billpay.Bill) error {
	vendor, err := s.requireVendor(ctx, s.vendorRepo, tenantID, draft.VendorID)
	if err != nil {
		return err
	}
	if err := vendor.EnsureCanBePaid(); err != nil {
		return err
	}

	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, draft.PaidFromAccountID)
	if err != nil {
		return fmt.Errorf("failed to load paid from account: %w", err)
	}
	if account == nil {
		return shared.NewDomainError("NOT_FOUND", "Paid from account not found")
	}
	if err := account.EnsureCanFundPayment(); err != nil {
		return err
	}

	byID := make(map[uuid.UUID]*billpay.Bill, len(bills))
	for i := range bills {
		byID[bills[i].ID] = &bills[i]
	}
	seen := make(map[uuid.UUID]struct{}, len(draft.Applications))
	for _, app := range draft.Applications {
		if !app.AmountApplied.IsPositive() {
			return shared.NewDomainError("INVALID_AMOUNT", "Each application amount must be greater than 0")
		}
		if _, dup := seen[app.BillID]; dup {
			return shared.NewDomainError("DUPLICATE_APPLICATION", fmt.Sprintf("Bill %s is applied more than once", app.BillID))
		}
		seen[app.BillID] = struct{}{}

		bill, ok := byID[app.BillID]
		if !ok {
			return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Bill %s not found", app.BillID))
		}
		if bill.VendorID != draft.VendorID {
			return shared.NewDomainError("BILL_VENDOR_MISMATCH", fmt.Sprintf("Bill %s does not belong to this vendor", bill.BillNumber))
		}
		if bill.Status == billpay.BillStatusVoid {
			return shared.NewDomainError("BILL_VOID", fmt.Sprintf("Cannot apply payment to voided bill %s", bill.BillNumber))
		}
		if !bill.IsOutstanding() {
			return shared.NewDomainError("BILL_NOT_OUTSTANDING", fmt.Sprintf("Bill %s has no balance due", bill.BillNumber))
		}
		if app.AmountApplied.GreaterThan(bill.BalanceDue) {
			return shared.NewDomainError("EXCEEDS_BALANCE", fmt.Sprintf("Amount applied to bill %s exceeds balance due", bill.BillNumber))
		}
	}
	return nil
}

// GetPayment returns one payment with its applications
func (s *BillPaymentService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.requirePayment(ctx, s.paymentRepo, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	if vendor, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, payment.VendorID); err == nil && vendor != nil {
		resp.VendorName = vendor.Name
	}
	return &resp, nil
}

// ListPayments returns a page of payments and the total count
func (s *BillPaymentService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := billpay.PaymentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "payment_date",
			OrderDir: "desc",
			Search:   filter.Search,
		}.Normalize(s.settings.DefaultPageSize, s.settings.MaxPageSize),
		VendorID:  filter.VendorID,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	}
	if filter.PaymentMethod != nil && *filter.PaymentMethod != "" {
		m := billpay.PaymentMethod(*filter.PaymentMethod)
		if !m.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
		}
		domainFilter.PaymentMethod = &m
	}
	if filter.Status != nil && *filter.Status != "" {
		st := billpay.PaymentStatus(*filter.Status)
		if !st.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid payment status")
		}
		domainFilter.Status = &st
	}

	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := ToPaymentResponses(payments)
	s.fillVendorNames(ctx, tenantID, items)
	return items, total, nil
}

// ListVendorPayments returns the vendor's most recent payments
func (s *BillPaymentService) ListVendorPayments(ctx context.Context, tenantID, vendorID uuid.UUID) ([]PaymentResponse, error) {
	vendor, err := s.requireVendor(ctx, s.vendorRepo, tenantID, vendorID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByVendor(ctx, tenantID, vendorID, s.settings.VendorPaymentsLimit)
	if err != nil {
		return nil, err
	}
	items := ToPaymentResponses(payments)
	for i := range items {
		items[i].VendorName = vendor.Name
	}
	return items, nil
}

// UpdatePayment edits the payment header. Applications cannot change.
func (s *BillPaymentService) UpdatePayment(ctx context.Context, tenantID, paymentID uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	if req.Applications != nil {
		return nil, shared.NewDomainError("APPLICATIONS_IMMUTABLE", MsgApplicationsImmutable)
	}

	update := billpay.HeaderUpdate{
		PaymentDate:     req.PaymentDate,
		ReferenceNumber: req.ReferenceNumber,
		Memo:            req.Memo,
	}
	if req.PaymentMethod != nil {
		m, err := billpay.ParsePaymentMethod(*req.PaymentMethod)
		if err != nil {
			return nil, err
		}
		update.PaymentMethod = &m
	}

	payment, err := s.requirePayment(ctx, s.paymentRepo, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.UpdateHeader(update); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payment)
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// VoidPayment voids a payment, restoring bill and vendor balances and
// reversing its journal entry
func (s *BillPaymentService) VoidPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req VoidPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill_payment", "void")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)

	var payment *billpay.Payment
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillPaymentLabels(telemetry.OperationVoidPayment, ""), func(c context.Context) {
		reason, err := billpay.NormalizeVoidReason(req.Reason)
		if err != nil {
			operationErr = err
			return
		}
		var voidedBy uuid.UUID
		if req.VoidedBy != nil {
			voidedBy = *req.VoidedBy
		}

		operationErr = s.txScope.Execute(c, func(repos TransactionalRepositories) error {
			p, err := s.requirePayment(c, repos.PaymentRepo(), tenantID, paymentID)
			if err != nil {
				return err
			}
			if err := p.Void(reason, voidedBy); err != nil {
				return err
			}
			if err := s.reverseBalances(c, repos, p); err != nil {
				return err
			}
			if err := s.voidJournalEntry(c, repos.JournalRepo(), p, billpay.JournalVoidReasonPaymentVoided); err != nil {
				return err
			}
			if err := repos.PaymentRepo().SaveWithLock(c, p); err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}
			payment = p
			return nil
		})
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}

	telemetry.SetOK(span)
	s.publishEvents(ctx, payment)
	logger.L(ctx).Info("bill payment voided",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("reason", payment.VoidReason),
	)
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

func (s *BillPaymentService) reverseBalances(ctx context.Context, repos TransactionalRepositories, p *billpay.Payment) error {
	for _, app := range p.Applications {
		bill, err := repos.BillRepo().FindByIDForTenant(ctx, p.TenantID, app.BillID)
		if err != nil {
			return fmt.Errorf("failed to load bill: %w", err)
		}
		if bill == nil {
			return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Bill %s not found", app.BillID))
		}
		if err := bill.ReversePayment(app.AmountApplied); err != nil {
			return err
		}
		if err := repos.BillRepo().SaveWithLock(ctx, bill); err != nil {
			return fmt.Errorf("failed to update bill %s: %w", bill.BillNumber, err)
		}
	}

	vendor, err := s.requireVendor(ctx, repos.VendorRepo(), p.TenantID, p.VendorID)
	if err != nil {
		return err
	}
	vendor.ReversePayment(p.TotalApplied())
	if err := repos.VendorRepo().SaveWithLock(ctx, vendor); err != nil {
		return fmt.Errorf("failed to update vendor balance: %w", err)
	}
	return nil
}

// voidJournalEntry reverses the payment's GL entry. An entry that is already
// void is left alone.
func (s *BillPaymentService) voidJournalEntry(ctx context.Context, repo billpay.JournalEntryRepository, p *billpay.Payment, reason string) error {
	if p.JournalEntryID == nil {
		return nil
	}
	entry, err := repo.FindByIDForTenant(ctx, p.TenantID, *p.JournalEntryID)
	if err != nil {
		return fmt.Errorf("failed to load journal entry: %w", err)
	}
	if entry == nil || entry.IsVoid {
		return nil
	}
	if err := entry.Void(reason); err != nil {
		return err
	}
	if err := repo.SaveWithLock(ctx, entry); err != nil {
		return fmt.Errorf("failed to void journal entry: %w", err)
	}
	return nil
}

// ClearPayment marks a pending payment as cleared by the bank
func (s *BillPaymentService) ClearPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.requirePayment(ctx, s.paymentRepo, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.MarkCleared(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payment)
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// DeletePayment removes a payment that has no applications and is not void
func (s *BillPaymentService) DeletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill_payment", "delete")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)

	var payment *billpay.Payment
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillPaymentLabels(telemetry.OperationDeletePayment, ""), func(c context.Context) {
		p, err := s.requirePayment(c, s.paymentRepo, tenantID, paymentID)
		if err != nil {
			operationErr = err
			return
		}
		if err := p.Delete(); err != nil {
			operationErr = err
			return
		}

		operationErr = s.txScope.Execute(c, func(repos TransactionalRepositories) error {
			if err := s.voidJournalEntry(c, repos.JournalRepo(), p, billpay.JournalVoidReasonPaymentDeleted); err != nil {
				return err
			}
			return repos.PaymentRepo().DeleteForTenant(c, tenantID, p.ID)
		})
		payment = p
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return operationErr
	}

	s.publishEvents(ctx, payment)
	return nil
}

// GetCheckData returns the data needed to print a check. It does not change
// the payment. When an archive is configured the layout is stored there and
// its link returned; archive failures are logged and do not fail the call.
func (s *BillPaymentService) GetCheckData(ctx context.Context, tenantID, paymentID uuid.UUID) (*CheckDataResponse, error) {
	payment, err := s.requirePayment(ctx, s.paymentRepo, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.EnsurePrintable(); err != nil {
		return nil, err
	}
	vendor, err := s.requireVendor(ctx, s.vendorRepo, tenantID, payment.VendorID)
	if err != nil {
		return nil, err
	}
	billIDs := make([]uuid.UUID, len(payment.Applications))
	for i, app := range payment.Applications {
		billIDs[i] = app.BillID
	}
	bills, err := s.billRepo.FindByIDs(ctx, tenantID, billIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}

	data := newCheckData(payment, vendor, bills)

	if s.archive != nil {
		body, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode check data: %w", err)
		}
		key := fmt.Sprintf("%s/%s.json", tenantID, payment.PaymentNumber)
		url, err := s.archive.Archive(ctx, key, body)
		if err != nil {
			logger.L(ctx).Warn("check archive failed", zap.String("key", key), zap.Error(err))
		} else {
			data.ArchiveURL = url
		}
	}
	return &data, nil
}

func (s *BillPaymentService) requireVendor(ctx context.Context, repo billpay.VendorRepository, tenantID, vendorID uuid.UUID) (*billpay.Vendor, error) {
	vendor, err := repo.FindByIDForTenant(ctx, tenantID, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor: %w", err)
	}
	if vendor == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Vendor not found")
	}
	return vendor, nil
}

func (s *BillPaymentService) requirePayment(ctx context.Context, repo billpay.PaymentRepository, tenantID, paymentID uuid.UUID) (*billpay.Payment, error) {
	payment, err := repo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}
	return payment, nil
}

// findPayablesAccount resolves the A/P account: the configured code when set,
// otherwise the first active liability account that looks like payables.
// A nil account with a nil error means none exists.
func (s *BillPaymentService) findPayablesAccount(ctx context.Context, repo billpay.AccountRepository, tenantID uuid.UUID) (*billpay.Account, error) {
	if code := s.settings.PayablesAccountCode; code != "" {
		account, err := repo.FindByCode(ctx, tenantID, code)
		if err != nil {
			return nil, fmt.Errorf("failed to load payables account: %w", err)
		}
		if account != nil && account.IsActive && account.AccountType == billpay.AccountTypeLiability {
			return account, nil
		}
	}
	account, err := repo.FindPayablesAccount(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payables account: %w", err)
	}
	return account, nil
}

// idempotencyClaim is the outcome of claiming a submit key. A non-nil
// replayID means the key already produced that payment.
type idempotencyClaim struct {
	store    shared.IdempotencyStore
	key      string
	ttl      time.Duration
	replayID *uuid.UUID
}

func (c *idempotencyClaim) release(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Release(context.WithoutCancel(ctx), c.key); err != nil {
		logger.L(ctx).Warn("failed to release idempotency key", zap.Error(err))
	}
}

func (c *idempotencyClaim) complete(ctx context.Context, paymentID uuid.UUID) {
	if c.store == nil {
		return
	}
	if err := c.store.Complete(context.WithoutCancel(ctx), c.key, paymentID.String(), c.ttl); err != nil {
		logger.L(ctx).Warn("failed to record idempotency result",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err),
		)
	}
}

func (s *BillPaymentService) claimIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*idempotencyClaim, error) {
	if key == "" || s.idempotency == nil {
		return &idempotencyClaim{}, nil
	}
	scoped := fmt.Sprintf("billpay:submit:%s:%s", tenantID, key)
	claimed, err := s.idempotency.Claim(ctx, scoped, s.settings.IdempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if claimed {
		return &idempotencyClaim{store: s.idempotency, key: scoped, ttl: s.settings.IdempotencyTTL}, nil
	}

	result, err := s.idempotency.Result(ctx, scoped)
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	paymentID, err := uuid.Parse(result)
	if err != nil {
		return nil, shared.NewDomainError("DUPLICATE_REQUEST", "A payment with this idempotency key is already being submitted")
	}
	return &idempotencyClaim{replayID: &paymentID}, nil
}

// publishEvents hands the aggregate's pending events to the bus. The write has
// already committed, so a publish failure is only logged.
func (s *BillPaymentService) publishEvents(ctx context.Context, payment *billpay.Payment) {
	events := payment.GetDomainEvents()
	payment.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish bill payment events",
			zap.String("payment_number", payment.PaymentNumber),
			zap.Error(err),
		)
	}
}

func (s *BillPaymentService) fillVendorNames(ctx context.Context, tenantID uuid.UUID, items []PaymentResponse) {
	if len(items) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.VendorID]; !ok {
			seen[it.VendorID] = struct{}{}
			ids = append(ids, it.VendorID)
		}
	}
	vendors, err := s.vendorRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		logger.L(ctx).Warn("failed to load vendor names", zap.Error(err))
		return
	}
	names := make(map[uuid.UUID]string, len(vendors))
	for _, v := range vendors {
		names[v.ID] = v.Name
	}
	for i := range items {
		items[i].VendorName = names[items[i].VendorID]
	}
}

func applicationBillIDs(d billpay.PaymentDraft) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(d.Applications))
	for _, app := range d.Applications {
		ids = append(ids, app.BillID)
	}
	return ids
}

// vendorSnapshots keeps the outstanding bills that belong to vendorID
func vendorSnapshots(bills []billpay.Bill, vendorID uuid.UUID) []billpay.OutstandingBill {
	out := make([]billpay.OutstandingBill, 0, len(bills))
	for i := range bills {
		if bills[i].VendorID == vendorID && bills[i].IsOutstanding() {
			out = append(out, bills[i].Snapshot())
		}
	}
	return out
}

func outcomeOf(err error) telemetry.Outcome {
	var verrs billpay.ValidationErrors
	if errors.As(err, &verrs) {
		return telemetry.OutcomeRejected
	}
	if _, ok := shared.AsDomainError(err); ok {
		return telemetry.OutcomeRejected
	}
	return telemetry.OutcomeFailed
}

var _ Gateway = (*BillPaymentService)(nil)
