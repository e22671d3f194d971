package response

// Business status codes.
const (
	CodeSuccess = 0
	CodeError   = 1

	// Auth errors 100xx
	ErrTokenInvalid = 10001
	ErrNoPermission = 10002

	// Catalog errors 200xx
	ErrProductNotFound   = 20001
	ErrCategoryNotFound  = 20002
	ErrBannerNotFound    = 20003
	ErrInsufficientStock = 20004

	// Discount errors 300xx
	ErrDiscountNotFound = 30001
	ErrDiscountExists   = 30002

	// Order errors 400xx
	ErrOrderNotFound     = 40001
	ErrInvalidTransition = 40002
	ErrShippingRequired  = 40003

	// System errors 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
