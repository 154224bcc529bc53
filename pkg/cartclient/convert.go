package cartclient

import (
	"github.com/angelmondragon/cartsync/internal/cart"
	"github.com/angelmondragon/cartsync/pkg/types"
)

func ItemsFromDetail(detail types.CartDetail) []cart.Item {
	items := make([]cart.Item, 0, len(detail.Items))
	for _, line := range detail.Items {
		id := cart.ProductID(line.Product.ID)
		items = append(items, cart.Item{
			ProductID: id,
			Product: cart.Product{
				ID:    id,
				Name:  line.Product.Name,
				Slug:  line.Product.Slug,
				Image: line.Product.Image,
				Price: line.Product.Price.Decimal(),
			},
			Quantity:        line.Quantity,
			OriginalPrice:   line.OriginalPrice.Decimal(),
			DiscountedPrice: line.DiscountedPrice.NullDecimal(),
		})
	}
	return items
}

func SummaryFromPricing(p types.SelectionPricing) cart.Summary {
	return cart.Summary{
		Subtotal:       p.Subtotal.Decimal(),
		DiscountAmount: p.DiscountAmount.Decimal(),
		FinalTotal:     p.FinalTotal.Decimal(),
		AppliedRule:    p.AppliedRule,
		UpsellHint:     p.UpsellHint,
	}
}
