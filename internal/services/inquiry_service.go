package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"heavyequip/internal/domain"
	"heavyequip/internal/repos"
	"heavyequip/internal/search"
	"heavyequip/internal/validate"
)

const (
	MaxDetailsBytes = 16 << 10
	MaxNoteLen      = 2000
)

// inquiryTransitions lists the statuses reachable from each status.
var inquiryTransitions = map[string][]string{
	domain.InquiryNew:        {domain.InquiryInProgress, domain.InquiryClosed},
	domain.InquiryInProgress: {domain.InquiryResolved, domain.InquiryClosed},
	domain.InquiryResolved:   {domain.InquiryClosed, domain.InquiryInProgress},
	domain.InquiryClosed:     nil,
}

// CanTransition reports whether an inquiry may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range inquiryTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type InquiryService struct {
	Inquiries *repos.InquiryRepo
	Ads       *repos.AdRepo
	Stores    *repos.StoreRepo
}

func NewInquiryService(inq *repos.InquiryRepo, ads *repos.AdRepo, stores *repos.StoreRepo) *InquiryService {
	return &InquiryService{Inquiries: inq, Ads: ads, Stores: stores}
}

// Submit stores a public inquiry. It always starts as "new"; urgency
// defaults to medium, and an inquiry about an ad is routed to the ad's store.
func (s *InquiryService) Submit(q domain.Inquiry) (domain.Inquiry, error) {
	q.Name = strings.TrimSpace(q.Name)
	q.Email = strings.ToLower(strings.TrimSpace(q.Email))
	q.Phone = strings.TrimSpace(q.Phone)
	q.Company = strings.TrimSpace(q.Company)
	q.Urgency = strings.ToLower(strings.TrimSpace(q.Urgency))
	if q.Urgency == "" {
		q.Urgency = domain.UrgencyMedium
	}
	q.Status = domain.InquiryNew
	q.Notes = ""
	for _, p := range []**string{&q.AdID, &q.StoreID} {
		if *p != nil && strings.TrimSpace(**p) == "" {
			*p = nil
		}
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	errs := &validate.Errors{}
	details, msg := normalizeDetails(q.Details)
	if msg != "" {
		errs.Add("details", msg)
	}
	q.Details = details

	if q.AdID != nil {
		ad, err := s.Ads.Get(*q.AdID)
		switch {
		case err == nil && ad.Public():
			if q.StoreID == nil && ad.StoreID != nil {
				q.StoreID = ad.StoreID
			}
		case err == nil || isNotFound(err):
			errs.Add("ad_id", "does not exist")
		default:
			return q, mapErr("check ad", err)
		}
	}
	if err := requireRef(errs, "store_id", q.StoreID, func(id string) error { _, err := s.Stores.Get(id); return err }); err != nil {
		return q, err
	}
	if err := errs.Err(); err != nil {
		return q, err
	}

	q.ID = uuid.NewString()
	if err := s.Inquiries.Create(q); err != nil {
		return q, mapErr("create inquiry", err)
	}
	return s.Get(q.ID)
}

// normalizeDetails requires a JSON object of at most MaxDetailsBytes and
// compacts it; empty input becomes {}.
func normalizeDetails(raw types.JSONText) (types.JSONText, string) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return types.JSONText("{}"), ""
	}
	if len(trimmed) > MaxDetailsBytes {
		return nil, fmt.Sprintf("must be at most %d bytes", MaxDetailsBytes)
	}
	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil || obj == nil {
		return nil, "must be a JSON object"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, "must be a JSON object"
	}
	return types.JSONText(buf.Bytes()), ""
}

func (s *InquiryService) Get(id string) (domain.Inquiry, error) {
	q, err := s.Inquiries.Get(id)
	return q, mapErr("inquiry "+id, err)
}

func (s *InquiryService) List(status, urgency string, page, limit int) ([]domain.Inquiry, search.Pagination, error) {
	errs := &validate.Errors{}
	if status != "" {
		if _, ok := inquiryTransitions[status]; !ok {
			errs.Add("status", "must be one of new, in_progress, resolved, closed")
		}
	}
	switch urgency {
	case "", domain.UrgencyLow, domain.UrgencyMedium, domain.UrgencyHigh, domain.UrgencyUrgent:
	default:
		errs.Add("urgency", "must be one of low, medium, high, urgent")
	}
	if err := errs.Err(); err != nil {
		return nil, search.Pagination{}, err
	}
	page, limit = pageWindow(page, limit)
	out, total, err := s.Inquiries.List(status, urgency, limit, (page-1)*limit)
	if err != nil {
		return nil, search.Pagination{}, mapErr("list inquiries", err)
	}
	return out, search.NewPagination(page, limit, total), nil
}

// UpdateStatus moves an inquiry along its workflow; closed is terminal.
func (s *InquiryService) UpdateStatus(id, to string) (domain.Inquiry, error) {
	cur, err := s.Get(id)
	if err != nil {
		return cur, err
	}
	if _, known := inquiryTransitions[to]; !known {
		errs := &validate.Errors{}
		errs.Add("status", "must be one of new, in_progress, resolved, closed")
		return cur, errs
	}
	if !CanTransition(cur.Status, to) {
		return cur, fmt.Errorf("inquiry %s: %s -> %s: %w", id, cur.Status, to, ErrInvalidTransition)
	}
	ok, err := s.Inquiries.UpdateStatus(id, to)
	if err := affected("update inquiry status", ok, err); err != nil {
		return cur, err
	}
	return s.Get(id)
}

func (s *InquiryService) AddNote(id, note string) (domain.Inquiry, error) {
	note = strings.TrimSpace(note)
	if note == "" || len(note) > MaxNoteLen {
		errs := &validate.Errors{}
		errs.Add("note", fmt.Sprintf("must be 1 to %d characters", MaxNoteLen))
		return domain.Inquiry{}, errs
	}
	ok, err := s.Inquiries.AddNote(id, note)
	if err := affected("add inquiry note", ok, err); err != nil {
		return domain.Inquiry{}, err
	}
	return s.Get(id)
}

func (s *InquiryService) Delete(id string) error {
	ok, err := s.Inquiries.Delete(id)
	return affected("delete inquiry", ok, err)
}

func (s *InquiryService) CountByStatus() (map[string]int, error) {
	m, err := s.Inquiries.CountByStatus()
	return m, mapErr("count inquiries", err)
}
