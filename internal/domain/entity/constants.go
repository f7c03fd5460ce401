package entity

// Status constants for workflow records (claims and leave requests)
const (
	StatusPending          = "PENDING"
	StatusApproved         = "APPROVED"
	StatusDeclined         = "DECLINED"
	StatusRejected         = "REJECTED"
	StatusCancelledByUser  = "CANCELLED_BY_USER"
	StatusCancelledByAdmin = "CANCELLED_BY_ADMIN"
	StatusTaken            = "TAKEN"
	StatusPartiallyTaken   = "PARTIALLY_TAKEN"
)

// Claim category constants
const (
	ClaimCategoryGeneral   = "GENERAL"
	ClaimCategoryTravel    = "TRAVEL"
	ClaimCategoryMeal      = "MEAL"
	ClaimCategoryMedical   = "MEDICAL"
	ClaimCategoryEquipment = "EQUIPMENT"
	ClaimCategoryOther     = "OTHER"
)

// Leave type constants
const (
	LeaveTypeAnnual    = "ANNUAL"
	LeaveTypeSick      = "SICK"
	LeaveTypeUnpaid    = "UNPAID"
	LeaveTypeMaternity = "MATERNITY"
	LeaveTypeEmergency = "EMERGENCY"
)

// User role constants
const (
	RoleEmployee = "EMPLOYEE"
	RoleAdmin    = "ADMIN"
	RoleOwner    = "OWNER"
)

// Notification status constants
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
)

// Entity type discriminators for the shared approval event stream
const (
	EntityTypeClaim = "CLAIM"
	EntityTypeLeave = "LEAVE"
)

// Approval priority constants
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)
