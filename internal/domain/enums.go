package domain

// ApplicationStatus is the pipeline stage of a job application.
// The set is a flat enumeration: any status may transition to any other,
// there is no enforced workflow ordering (a Wishlist item may go straight
// to Ghosted).
type ApplicationStatus string

const (
	StatusWishlist     ApplicationStatus = "Wishlist"
	StatusApplied      ApplicationStatus = "Applied"
	StatusInterviewing ApplicationStatus = "Interviewing"
	StatusOffer        ApplicationStatus = "Offer"
	StatusRejected     ApplicationStatus = "Rejected"
	StatusGhosted      ApplicationStatus = "Ghosted"
	StatusWithdrawn    ApplicationStatus = "Withdrawn"
)

// Statuses lists all valid application statuses in pipeline order.
var Statuses = []ApplicationStatus{
	StatusWishlist,
	StatusApplied,
	StatusInterviewing,
	StatusOffer,
	StatusRejected,
	StatusGhosted,
	StatusWithdrawn,
}

func (s ApplicationStatus) String() string { return string(s) }

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusWishlist, StatusApplied, StatusInterviewing, StatusOffer,
		StatusRejected, StatusGhosted, StatusWithdrawn:
		return true
	}
	return false
}

// WorkMode is the on-site arrangement of a position.
type WorkMode string

const (
	ModeInOffice WorkMode = "In-Office"
	ModeHybrid   WorkMode = "Hybrid"
	ModeRemote   WorkMode = "Remote"
)

func (m WorkMode) String() string { return string(m) }

func (m WorkMode) IsValid() bool {
	switch m {
	case ModeInOffice, ModeHybrid, ModeRemote:
		return true
	}
	return false
}

// Activity selects which slice of the pipeline an unpaginated listing covers.
type Activity string

const (
	ActivityAll      Activity = "all"
	ActivityActive   Activity = "active"
	ActivityArchived Activity = "archived"
)

func (a Activity) IsValid() bool {
	switch a {
	case ActivityAll, ActivityActive, ActivityArchived:
		return true
	}
	return false
}

// ArchivedStatuses are the terminal stages excluded from the active board.
var ArchivedStatuses = []ApplicationStatus{StatusRejected, StatusGhosted, StatusWithdrawn}

// UserRole represents the authorization level of a user.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleAdmin:
		return true
	}
	return false
}
