// Package receipt formats checkout snapshots for the screen, the printer and PDF.
//
// Render is pure: the same snapshot yields the same document content for
// every medium. Print media only drops the on-screen controls and narrows
// the layout.
package receipt

import (
	"errors"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/shopspring/decimal"
)

var ErrNothingToRender = errors.New("receipt needs an order id and at least one item")

// Media is where a receipt is shown
type Media string

const (
	MediaScreen Media = "screen"
	MediaPrint  Media = "print"
)

func (m Media) Valid() bool {
	return m == MediaScreen || m == MediaPrint
}

const (
	ScreenWidth = 40
	PrintWidth  = 32

	Title    = "RECEIPT"
	Greeting = "Thank you for your order!"
	Footer   = "*** Thank you for dining with us ***"

	dateLayout = "Jan 2, 2006 3:04 PM"
)

// Controls shown under an on-screen receipt
var Controls = []string{"Print Receipt", "New Order"}

// Line is a rendered order item
type Line struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
}

// Document is a rendered receipt
type Document struct {
	Media      Media                `json:"media"`
	Width      int                  `json:"width"`
	Restaurant string               `json:"restaurant"`
	Title      string               `json:"title"`
	Greeting   string               `json:"greeting"`
	OrderID    string               `json:"orderId"`
	Date       string               `json:"date"`
	OrderType  string               `json:"orderType"`
	Status     models.PaymentStatus `json:"status"`
	Lines      []Line               `json:"lines"`
	Subtotal   decimal.Decimal      `json:"subtotal"`
	Tax        decimal.Decimal      `json:"tax"`
	Total      decimal.Decimal      `json:"total"`
	Footer     string               `json:"footer"`
	Controls   []string             `json:"controls,omitempty"`
}

// Renderer holds the parts of a receipt that do not come from the order
type Renderer struct {
	Restaurant string
	OrderType  string
	Location   *time.Location
}

func NewRenderer(restaurant string) Renderer {
	return Renderer{Restaurant: restaurant, OrderType: "Dine-in", Location: time.Local}
}

// Render formats snap for media
func (r Renderer) Render(snap models.Snapshot, media Media) (Document, error) {
	if snap.ID == "" || len(snap.Items) == 0 {
		return Document{}, ErrNothingToRender
	}
	if !media.Valid() {
		media = MediaScreen
	}

	loc := r.Location
	if loc == nil {
		loc = time.Local
	}

	doc := Document{
		Media:      media,
		Width:      ScreenWidth,
		Restaurant: r.Restaurant,
		Title:      Title,
		Greeting:   Greeting,
		OrderID:    snap.ID,
		Date:       snap.Date.In(loc).Format(dateLayout),
		OrderType:  r.OrderType,
		Status:     snap.Status,
		Lines:      make([]Line, 0, len(snap.Items)),
		Subtotal:   snap.Subtotal,
		Tax:        snap.Tax,
		Total:      snap.Total,
		Footer:     Footer,
	}
	for _, item := range snap.Items {
		doc.Lines = append(doc.Lines, Line{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Amount:   item.LineTotal(),
		})
	}

	if media == MediaPrint {
		doc.Width = PrintWidth
	} else {
		doc.Controls = append([]string(nil), Controls...)
	}
	return doc, nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
