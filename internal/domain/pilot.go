package domain

// Pilot is the direct-booking counterpart: a tandem pilot flying at a fixed
// set of locations, optionally on behalf of a company.
type Pilot struct {
	ID          string
	CompanyID   string
	LocationIDs []string
	Verified    bool
}
