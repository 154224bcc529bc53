package types

// Product is the display snapshot carried by a cart line.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
	Price Money  `json:"price"`
}

type CartItem struct {
	Product         Product `json:"product"`
	Quantity        int     `json:"quantity"`
	OriginalPrice   Money   `json:"original_price"`
	DiscountedPrice *Money  `json:"discounted_price"`
}

// CartDetail is returned by every /cart/ operation.
type CartDetail struct {
	Items          []CartItem `json:"items"`
	Subtotal       Money      `json:"subtotal"`
	DiscountAmount Money      `json:"discount_amount"`
	FinalTotal     Money      `json:"final_total"`
	AppliedRule    string     `json:"applied_rule,omitempty"`
	UpsellHint     string     `json:"upsell_hint,omitempty"`
}

type SelectionPricing struct {
	Subtotal       Money  `json:"subtotal"`
	DiscountAmount Money  `json:"discount_amount"`
	FinalTotal     Money  `json:"final_total"`
	AppliedRule    string `json:"applied_rule,omitempty"`
	UpsellHint     string `json:"upsell_hint,omitempty"`
}

// UpsertCartItemRequest sets an absolute quantity; zero or less deletes the line.
type UpsertCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

type DeleteCartItemsRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,required"`
}

type SelectionLine struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type CalculateSelectionRequest struct {
	Selection []SelectionLine `json:"selection" validate:"dive"`
}

// SuccessEnvelope wraps every successful Cart API response.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the error object of a failed Cart API call. Details carries per-field
// messages for validation failures and ids or limits for cart errors.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
