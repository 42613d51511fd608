package service

// Services is the full set of services behind the HTTP API
type Services struct {
	Clients      *ClientService
	Applications *ApplicationService
	Batches      *BatchService
	Cards        *CardService
	Fees         *FeeService
	References   *ReferenceService
	Reports      *ReportService
}

// Options tunes the lifecycle services
type Options struct {
	CardExpiryYears   int
	ReportDefaultDays int
}

// NewServices wires every service over the same stores and publisher
func NewServices(deps Deps, opts Options) *Services {
	applications := NewApplicationService(deps)
	cards := NewCardService(deps, opts.CardExpiryYears)
	return &Services{
		Clients:      NewClientService(deps),
		Applications: applications,
		Batches:      NewBatchService(deps, applications, cards),
		Cards:        cards,
		Fees:         NewFeeService(deps),
		References:   NewReferenceService(deps),
		Reports:      NewReportService(deps, opts.ReportDefaultDays),
	}
}
