package service

import (
	"sync"

	"pixelfood/internal/model"

	"github.com/shopspring/decimal"
)

// Carrito is the order being assembled at the terminal. It belongs to the
// session, not to any order, and is emptied on successful submission, on
// explicit reset and on logout.
type Carrito struct {
	mu     sync.Mutex
	lineas []model.LineaCarrito
}

// MaxCantidad caps the units of one line.
const MaxCantidad = 999

func NewCarrito() *Carrito { return &Carrito{} }

// Add puts one unit of plato in the cart. The first add captures the price;
// later adds only bump the quantity.
func (c *Carrito) Add(plato model.Plato) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(plato.ID); i >= 0 {
		if c.lineas[i].Cantidad < MaxCantidad {
			c.lineas[i].Cantidad++
		}
		return
	}
	c.lineas = append(c.lineas, model.LineaCarrito{
		PlatoID:  plato.ID,
		Nombre:   plato.Nombre,
		Precio:   plato.Precio,
		Cantidad: 1,
	})
}

// Update changes the quantity of platoID by delta, capped at MaxCantidad. A
// line that would drop to zero or below is removed. Unknown ids are ignored.
func (c *Carrito) Update(platoID string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(platoID)
	if i < 0 {
		return
	}
	// Quantities never exceed MaxCantidad, so clamping delta keeps the sum in range.
	delta = max(-MaxCantidad, min(delta, MaxCantidad))
	c.setCantidad(i, c.lineas[i].Cantidad+delta)
}

// Descontar takes the submitted lines out of the cart. Units added while the
// order was in flight stay.
func (c *Carrito) Descontar(enviadas []model.LineaCarrito) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range enviadas {
		if i := c.index(l.PlatoID); i >= 0 {
			c.setCantidad(i, c.lineas[i].Cantidad-l.Cantidad)
		}
	}
}

func (c *Carrito) Remove(platoID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(platoID); i >= 0 {
		c.removeAt(i)
	}
}

// Total is Σ precio × cantidad, unrounded.
func (c *Carrito) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, l := range c.lineas {
		total = total.Add(l.Subtotal())
	}
	return total
}

// TotalRedondeado is Total rounded to cents for display and transmission.
func (c *Carrito) TotalRedondeado() decimal.Decimal {
	return c.Total().Round(2)
}

// Lines returns a copy of the lines in insertion order.
func (c *Carrito) Lines() []model.LineaCarrito {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.LineaCarrito{}, c.lineas...)
}

// Len is the number of units in the cart.
func (c *Carrito) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lineas {
		n += l.Cantidad
	}
	return n
}

func (c *Carrito) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lineas) == 0
}

func (c *Carrito) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lineas = nil
}

func (c *Carrito) index(platoID string) int {
	for i, l := range c.lineas {
		if l.PlatoID == platoID {
			return i
		}
	}
	return -1
}

// setCantidad must run under mu.
func (c *Carrito) setCantidad(i, q int) {
	switch {
	case q <= 0:
		c.removeAt(i)
	case q > MaxCantidad:
		c.lineas[i].Cantidad = MaxCantidad
	default:
		c.lineas[i].Cantidad = q
	}
}

func (c *Carrito) removeAt(i int) {
	c.lineas = append(c.lineas[:i], c.lineas[i+1:]...)
}
