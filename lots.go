package tradepnl

// lot is a discrete open quantity at a specific price, consumed oldest-first
// when closing trades arrive.
type lot struct {
	Quantity Quantity
	Price    Money
	Today    bool // the opening trade fell on the evaluation date
}

// lotQueue is a FIFO of open lots. Lots are owned exclusively by their queue:
// they are decremented in place as they are consumed and dropped once
// exhausted (within the lot epsilon).
type lotQueue []*lot

// push appends a new lot at the back of the queue.
func (q *lotQueue) push(quantity Quantity, price Money, today bool) {
	*q = append(*q, &lot{Quantity: quantity, Price: price, Today: today})
}

// consume takes up to demand from the front of the queue, oldest lot first,
// invoking onMatch with each matched lot and the matched quantity before the
// lot is decremented. It returns the unmatched remainder of demand. This is
// the single lot-consumption primitive every metric view is built on.
func (q *lotQueue) consume(demand Quantity, onMatch func(l *lot, matched Quantity)) Quantity {
	for len(*q) > 0 && demand.IsPositive() && !demand.IsExhausted() {
		front := (*q)[0]
		matched := demand.Min(front.Quantity)
		if onMatch != nil {
			onMatch(front, matched)
		}
		front.Quantity = front.Quantity.Sub(matched)
		demand = demand.Sub(matched)
		if front.Quantity.IsExhausted() {
			*q = (*q)[1:]
		}
	}
	if demand.IsExhausted() {
		return Q(0)
	}
	return demand
}

// quantity returns the total quantity remaining in the queue.
func (q lotQueue) quantity() Quantity {
	total := Q(0)
	for _, l := range q {
		total = total.Add(l.Quantity)
	}
	return total
}

// cost returns the total cost basis of the remaining lots.
func (q lotQueue) cost() Money {
	var total Money
	for _, l := range q {
		total = total.Add(l.Price.Mul(l.Quantity))
	}
	return total
}
