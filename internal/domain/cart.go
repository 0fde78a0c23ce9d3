package domain

const (
	DefaultShippingFee      int64 = 5000
	DefaultFreeShippingOver int64 = 100000
)

// ShippingPolicy charges a flat fee unless the subtotal is strictly above FreeOver.
type ShippingPolicy struct {
	FlatFee  int64
	FreeOver int64
}

func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{FlatFee: DefaultShippingFee, FreeOver: DefaultFreeShippingOver}
}

func (p ShippingPolicy) Cost(subtotal int64) int64 {
	if subtotal > p.FreeOver {
		return 0
	}
	return p.FlatFee
}

// RemainingForFree is how much more the customer must add to qualify for free shipping.
func (p ShippingPolicy) RemainingForFree(subtotal int64) int64 {
	if subtotal > p.FreeOver {
		return 0
	}
	return p.FreeOver - subtotal + 1
}

type CartItem struct {
	ProductID string `json:"productId" binding:"required"`
	Name      string `json:"name"      binding:"required"`
	Price     int64  `json:"price"     binding:"gte=0"`
	Quantity  int    `json:"quantity"  binding:"required,gt=0"`
	Image     string `json:"image"`
	Weight    int    `json:"weight"    binding:"gte=0"`
}

// Cart is an ordered, client-held set of line items. Quantities are always
// positive: an item whose quantity would drop to zero is removed.
type Cart struct {
	items    []CartItem
	shipping ShippingPolicy
}

func NewCart(policy ShippingPolicy) *Cart {
	return &Cart{shipping: policy}
}

func (c *Cart) index(productID string) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem inserts item or, when the product is already in the cart, adds its quantity.
func (c *Cart) AddItem(item CartItem) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if i := c.index(item.ProductID); i >= 0 {
		c.items[i].Quantity += item.Quantity
		return
	}
	c.items = append(c.items, item)
}

func (c *Cart) UpdateQuantity(productID string, quantity int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	c.items[i].Quantity = quantity
}

func (c *Cart) RemoveItem(productID string) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, it := range c.items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// TotalWeight is in grams.
func (c *Cart) TotalWeight() int {
	w := 0
	for _, it := range c.items {
		w += it.Weight * it.Quantity
	}
	return w
}

// ShippingCost is zero for an empty cart so the basket view never shows a
// delivery fee with nothing to deliver.
func (c *Cart) ShippingCost() int64 {
	if len(c.items) == 0 {
		return 0
	}
	return c.shipping.Cost(c.TotalPrice())
}

// Quote is the checkout summary derived from a cart.
type Quote struct {
	Subtotal              int64 `json:"subtotal"`
	ShippingCost          int64 `json:"shippingCost"`
	Discount              int64 `json:"discount"`
	Total                 int64 `json:"total"`
	TotalItems            int   `json:"totalItems"`
	TotalWeight           int   `json:"totalWeight"`
	FreeShippingRemaining int64 `json:"freeShippingRemaining"`
}

func (c *Cart) Quote(discount int64) Quote {
	subtotal := c.TotalPrice()
	shipping := c.ShippingCost()
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal+shipping {
		discount = subtotal + shipping
	}
	q := Quote{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Discount:     discount,
		Total:        subtotal + shipping - discount,
		TotalItems:   c.TotalItems(),
		TotalWeight:  c.TotalWeight(),
	}
	if len(c.items) > 0 {
		q.FreeShippingRemaining = c.shipping.RemainingForFree(subtotal)
	}
	return q
}
