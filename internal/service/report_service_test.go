package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardops/card-issuance-api/internal/metrics"
	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
	"github.com/cardops/card-issuance-api/internal/service/mocks"
)

func day(d, h int) *time.Time {
	t := time.Date(2025, 3, d, h, 0, 0, 0, time.UTC)
	return &t
}

func reportFacts() []models.ApplicationFact {
	reason := "KYC check failed"
	return []models.ApplicationFact{
		{ApplicationID: "a1", RequestedAt: *day(3, 9), StatusCode: models.AppStatusInBatch, DecisionAt: day(4, 9),
			IssuedAt: day(6, 9), DeliveredAt: day(8, 9), HandedAt: day(9, 9), ActivatedAt: day(9, 21)},
		{ApplicationID: "a2", RequestedAt: *day(3, 12), StatusCode: models.AppStatusApproved, DecisionAt: day(5, 12)},
		{ApplicationID: "a3", RequestedAt: *day(4, 10), StatusCode: models.AppStatusRejected, DecisionAt: day(4, 22), RejectReasonName: &reason},
		{ApplicationID: "a4", RequestedAt: *day(11, 10), StatusCode: models.AppStatusRejected, DecisionAt: day(12, 10)},
		{ApplicationID: "a5", RequestedAt: *day(11, 11), StatusCode: models.AppStatusRejected, DecisionAt: day(12, 11), RejectReasonName: &reason},
		{ApplicationID: "a6", RequestedAt: *day(12, 8), StatusCode: models.AppStatusNew},
	}
}

func newReportService(t *testing.T) (*ReportService, models.ReportRange) {
	t.Helper()

	r := models.ReportRange{From: *day(1, 0), To: *day(31, 0)}
	reports := &mocks.MockReportStore{}
	reports.On("ListApplicationFacts", mock.Anything, r.From, r.To).Return(reportFacts(), nil)

	svc := NewReportService(Deps{
		Stores:  Stores{Reports: reports},
		Metrics: metrics.New(prometheus.NewRegistry()),
		Clock:   func() time.Time { return *day(20, 15) },
	}, 0)
	return svc, r
}

func TestReportFunnel(t *testing.T) {
	svc, r := newReportService(t)

	report, err := svc.Funnel(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Applications)
	assert.Equal(t, 2, report.Approved)
	assert.Equal(t, 3, report.Rejected)
	assert.Equal(t, 1, report.Issued)
	assert.Equal(t, 1, report.Handed)
	assert.Equal(t, 1, report.Activated)
}

func TestReportVolume(t *testing.T) {
	svc, r := newReportService(t)

	daily, err := svc.Volume(context.Background(), r, BucketDay)
	require.NoError(t, err)
	assert.Equal(t, []models.VolumePoint{
		{Bucket: "2025-03-03", Applications: 2, Approved: 2, Issued: 1, Activated: 1},
		{Bucket: "2025-03-04", Applications: 1},
		{Bucket: "2025-03-11", Applications: 2},
		{Bucket: "2025-03-12", Applications: 1},
	}, daily.Points)

	monthly, err := svc.Volume(context.Background(), r, BucketMonth)
	require.NoError(t, err)
	require.Len(t, monthly.Points, 1)
	assert.Equal(t, 6, monthly.Points[0].Applications)

	_, err = svc.Volume(context.Background(), r, BucketWeek)
	assert.True(t, serviceerror.IsValidation(err))
}

func TestReportSLA(t *testing.T) {
	svc, r := newReportService(t)

	weekly, err := svc.SLA(context.Background(), r, BucketWeek)
	require.NoError(t, err)
	require.Len(t, weekly.Points, 2)

	first := weekly.Points[0]
	assert.Equal(t, "2025-03-03", first.Bucket)
	// (1 + 2 + 0.5) / 3
	assert.InDelta(t, 3.5/3, *first.DaysToDecisionAvg, 1e-9)
	assert.InDelta(t, 3.0, *first.DaysToIssueAvg, 1e-9)
	assert.InDelta(t, 2.0, *first.DaysDeliveryAvg, 1e-9)
	assert.InDelta(t, 0.5, *first.DaysToActivateAvg, 1e-9)

	second := weekly.Points[1]
	assert.Equal(t, "2025-03-10", second.Bucket)
	assert.InDelta(t, 1.0, *second.DaysToDecisionAvg, 1e-9)
	assert.Nil(t, second.DaysToIssueAvg)
	assert.Nil(t, second.DaysDeliveryAvg)

	_, err = svc.SLA(context.Background(), r, BucketDay)
	assert.True(t, serviceerror.IsValidation(err))
}

func TestReportRejectReasons(t *testing.T) {
	svc, r := newReportService(t)

	report, err := svc.RejectReasons(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []models.RejectReasonPoint{
		{Reason: "KYC check failed", Count: 2},
		{Reason: "Not specified", Count: 1},
	}, report.Points)
}

func TestReportRange(t *testing.T) {
	svc, _ := newReportService(t)

	r, err := svc.Range(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, *day(21, 0), r.To)
	assert.Equal(t, r.To.AddDate(0, 0, -DefaultReportDays), r.From)

	_, err = svc.Range(day(10, 0), day(10, 0))
	assert.True(t, serviceerror.IsValidation(err))
}

func TestReports_AgainstMemoryStore(t *testing.T) {
	setup := NewTestSetup(t)
	ctx := context.Background()

	setup.approvedApplication(t)
	setup.rejectedApplication(t)
	setup.newApplication(t)

	r, err := setup.Reports.Range(nil, nil)
	require.NoError(t, err)

	funnel, err := setup.Reports.Funnel(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 3, funnel.Applications)
	assert.Equal(t, 1, funnel.Approved)
	assert.Equal(t, 1, funnel.Rejected)

	reasons, err := setup.Reports.RejectReasons(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, []models.RejectReasonPoint{{Reason: "KYC check failed", Count: 1}}, reasons.Points)
}
