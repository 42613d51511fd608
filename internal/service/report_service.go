package service

import (
	"context"
	"sort"
	"time"

	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
	"github.com/cardops/card-issuance-api/pkg/utils"
)

// Report bucket sizes
const (
	BucketDay   = "day"
	BucketWeek  = "week"
	BucketMonth = "month"

	// DefaultReportDays is the window used when a report request names no range
	DefaultReportDays = 30

	unspecifiedReason = "Not specified"
)

// ReportService aggregates the application/card projection into management reports.
// Each application counts once per bucket regardless of how many rows join to it.
type ReportService struct {
	lifecycle
	defaultDays int
}

// NewReportService creates a new ReportService. defaultDays <= 0 selects DefaultReportDays.
func NewReportService(deps Deps, defaultDays int) *ReportService {
	if defaultDays <= 0 {
		defaultDays = DefaultReportDays
	}
	return &ReportService{lifecycle: newLifecycle(deps), defaultDays: defaultDays}
}

// Range resolves an optional [from, to) window. A missing end is tomorrow's midnight;
// a missing start is defaultDays before the end.
func (s *ReportService) Range(from, to *time.Time) (models.ReportRange, error) {
	var r models.ReportRange
	if to != nil {
		r.To = to.UTC()
	} else {
		r.To = utils.StartOfDay(s.clock()).AddDate(0, 0, 1)
	}
	if from != nil {
		r.From = from.UTC()
	} else {
		r.From = r.To.AddDate(0, 0, -s.defaultDays)
	}
	if !r.From.Before(r.To) {
		return r, serviceerror.Validation("report range start must be before its end")
	}
	return r, nil
}

func (s *ReportService) facts(ctx context.Context, r models.ReportRange) ([]models.ApplicationFact, error) {
	facts, err := s.stores.Reports.ListApplicationFacts(ctx, r.From, r.To)
	if err != nil {
		return nil, storageErr("load report facts", err)
	}
	return facts, nil
}

func approved(f models.ApplicationFact) bool {
	return f.StatusCode == models.AppStatusApproved || f.StatusCode == models.AppStatusInBatch
}

// Funnel counts applications of the window by how far they got
func (s *ReportService) Funnel(ctx context.Context, r models.ReportRange) (*models.FunnelReport, error) {
	facts, err := s.facts(ctx, r)
	if err != nil {
		return nil, err
	}

	report := &models.FunnelReport{ReportRange: r}
	for _, f := range facts {
		report.Applications++
		if approved(f) {
			report.Approved++
		}
		if f.StatusCode == models.AppStatusRejected {
			report.Rejected++
		}
		if f.IssuedAt != nil {
			report.Issued++
		}
		if f.HandedAt != nil {
			report.Handed++
		}
		if f.ActivatedAt != nil {
			report.Activated++
		}
	}
	return report, nil
}

// Volume counts applications per day or month of request
func (s *ReportService) Volume(ctx context.Context, r models.ReportRange, bucket string) (*models.SeriesReport[models.VolumePoint], error) {
	label, err := bucketLabel(bucket, BucketDay, BucketMonth)
	if err != nil {
		return nil, err
	}
	facts, err := s.facts(ctx, r)
	if err != nil {
		return nil, err
	}

	points := map[string]*models.VolumePoint{}
	var order []string
	for _, f := range facts {
		key := label(f.RequestedAt)
		p, ok := points[key]
		if !ok {
			p = &models.VolumePoint{Bucket: key}
			points[key] = p
			order = append(order, key)
		}
		p.Applications++
		if approved(f) {
			p.Approved++
		}
		if f.IssuedAt != nil {
			p.Issued++
		}
		if f.ActivatedAt != nil {
			p.Activated++
		}
	}

	sort.Strings(order)
	out := &models.SeriesReport[models.VolumePoint]{ReportRange: r, Bucket: bucket, Points: make([]models.VolumePoint, 0, len(order))}
	for _, key := range order {
		out.Points = append(out.Points, *points[key])
	}
	return out, nil
}

type average struct {
	sum float64
	n   int
}

func (a *average) add(from, to *time.Time) {
	if from == nil || to == nil {
		return
	}
	a.sum += utils.DaysBetween(*from, *to)
	a.n++
}

func (a average) value() *float64 {
	if a.n == 0 {
		return nil
	}
	v := a.sum / float64(a.n)
	return &v
}

// SLA averages stage durations in days per month or week of request
func (s *ReportService) SLA(ctx context.Context, r models.ReportRange, bucket string) (*models.SeriesReport[models.SLAPoint], error) {
	label, err := bucketLabel(bucket, BucketMonth, BucketWeek)
	if err != nil {
		return nil, err
	}
	facts, err := s.facts(ctx, r)
	if err != nil {
		return nil, err
	}

	type stages struct{ decision, issue, delivery, activate average }
	buckets := map[string]*stages{}
	var order []string
	for _, f := range facts {
		key := label(f.RequestedAt)
		st, ok := buckets[key]
		if !ok {
			st = &stages{}
			buckets[key] = st
			order = append(order, key)
		}
		requested := f.RequestedAt
		st.decision.add(&requested, f.DecisionAt)
		st.issue.add(&requested, f.IssuedAt)
		st.delivery.add(f.IssuedAt, f.DeliveredAt)
		st.activate.add(f.HandedAt, f.ActivatedAt)
	}

	sort.Strings(order)
	out := &models.SeriesReport[models.SLAPoint]{ReportRange: r, Bucket: bucket, Points: make([]models.SLAPoint, 0, len(order))}
	for _, key := range order {
		st := buckets[key]
		out.Points = append(out.Points, models.SLAPoint{
			Bucket:            key,
			DaysToDecisionAvg: st.decision.value(),
			DaysToIssueAvg:    st.issue.value(),
			DaysDeliveryAvg:   st.delivery.value(),
			DaysToActivateAvg: st.activate.value(),
		})
	}
	return out, nil
}

// RejectReasons counts rejected applications per reason, most frequent first
func (s *ReportService) RejectReasons(ctx context.Context, r models.ReportRange) (*models.SeriesReport[models.RejectReasonPoint], error) {
	facts, err := s.facts(ctx, r)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, f := range facts {
		if f.StatusCode != models.AppStatusRejected {
			continue
		}
		reason := unspecifiedReason
		if f.RejectReasonName != nil && *f.RejectReasonName != "" {
			reason = *f.RejectReasonName
		}
		counts[reason]++
	}

	points := make([]models.RejectReasonPoint, 0, len(counts))
	for reason, n := range counts {
		points = append(points, models.RejectReasonPoint{Reason: reason, Count: n})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Count != points[j].Count {
			return points[i].Count > points[j].Count
		}
		return points[i].Reason < points[j].Reason
	})
	return &models.SeriesReport[models.RejectReasonPoint]{ReportRange: r, Points: points}, nil
}

func bucketLabel(bucket string, allowed ...string) (func(time.Time) string, error) {
	for _, a := range allowed {
		if a != bucket {
			continue
		}
		switch bucket {
		case BucketDay:
			return utils.DayBucket, nil
		case BucketWeek:
			return utils.WeekBucket, nil
		case BucketMonth:
			return utils.MonthBucket, nil
		}
	}
	return nil, serviceerror.Validation("bucket must be one of %v", allowed)
}
