package constants

const (
	ROLE_ADMIN   = "admin"
	ROLE_STUDENT = "student"
)

// Order lifecycle. The order of the slice is the only legal transition order.
const (
	ORDER_PREPARING = "Preparing"
	ORDER_READY     = "Ready"
	ORDER_PICKED_UP = "Picked Up"
)

var ORDER_STATUSES = []string{ORDER_PREPARING, ORDER_READY, ORDER_PICKED_UP}

const (
	INTENT_PENDING = "PENDING"
	INTENT_PAID    = "PAID"
)

const (
	PICKUP_ASAP          = "ASAP"
	NOW_SERVING_NONE     = "--"
	PEAK_HOUR_NONE       = "--:--"
	DEFAULT_CATEGORY     = "General"
	DEFAULT_STOCK        = 20
	DEFAULT_PREP_MINUTES = 15
	TOKEN_SEQUENCE       = "orders"
)

// Messages returned to the client.
const (
	ERROR_INTERNAL_ERROR     = "Internal server error."
	MISSING_LOGIN_INPUT      = "Email and password are required."
	INVALID_CREDENTIALS      = "Invalid credentials."
	INVALID_MASTER_KEY       = "Invalid Master Key."
	EMAIL_ALREADY_EXISTS     = "Email already exists."
	MISSING_TOKEN            = "No token provided."
	INVALID_TOKEN            = "Token invalid."
	NOT_ADMIN                = "Admin only."
	INVALID_INPUT            = "Invalid input."
	MENU_ITEM_NOT_FOUND      = "Menu item not found."
	ORDER_NOT_FOUND          = "Order not found."
	PAYMENT_NOT_FOUND        = "Payment order not found."
	PAYMENT_NOT_VERIFIED     = "Payment not verified."
	PAYMENT_AMOUNT_MISMATCH  = "Paid amount does not match the order total."
	PAYMENT_GATEWAY_ERROR    = "Payment gateway unavailable. Please try again."
	OUT_OF_STOCK             = "Some items are out of stock."
	SOLD_OUT_AFTER_PAYMENT   = "An item sold out while you were paying. Your payment will be refunded."
	CART_EMPTY               = "Cart is empty."
	CART_MISMATCH            = "Cart does not match the paid order."
	INVALID_PICKUP_TIME      = "Pickup time must be ASAP or HH:MM."
	INVALID_ORDER_STATUS     = "Status must be one of Preparing, Ready, Picked Up."
	INVALID_TRANSITION       = "Order cannot move to that status."
	ORDER_BELONGS_TO_ANOTHER = "Order belongs to another customer."
)
