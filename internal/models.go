package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	StatusActive    BookingStatus = "Active"
	StatusCompleted BookingStatus = "Completed"
)

// CurrentSchemaVersion is written into every encoded booking. Records without
// a schema_version key are version 1.
const CurrentSchemaVersion = 2

var (
	ErrBikeNotFound    = errors.New("bike not found")
	ErrBikeUnavailable = errors.New("bike not available")
	ErrNoActiveRental  = errors.New("no active rental found")
	ErrInvalidIndex    = errors.New("invalid index")
	ErrInvalidDuration = errors.New("rental duration must be positive")
)

// DecodeError reports a canonical dictionary that is missing a required key
// or holds a value of the wrong type.
type DecodeError struct {
	Entity string
	Key    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: key %q %s", e.Entity, e.Key, e.Reason)
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type BikeDetails struct {
	BikeID      string  `json:"bike_id"`
	BikeType    string  `json:"bike_type"`
	Size        string  `json:"size"`
	Color       string  `json:"color"`
	RentalPrice float64 `json:"rental_price"`
	Available   bool    `json:"available"`
}

type Booking struct {
	ID          uuid.UUID     `json:"booking_id,omitempty"`
	Customer    Customer      `json:"customer"`
	BikeID      string        `json:"bike_id"`
	RentalHours float64       `json:"rental_hours"`
	TotalCost   float64       `json:"total_cost"`
	Status      BookingStatus `json:"status"`
}

// RentalRequest is the input to a rental, already normalised to hours.
type RentalRequest struct {
	BikeID    string  `validate:"required"`
	FirstName string  `validate:"required,letters"`
	LastName  string  `validate:"required,letters"`
	Phone     string  `validate:"required,digits"`
	Hours     float64 `validate:"gt=0"`
}

type BikeRequest struct {
	BikeID      string  `validate:"required"`
	BikeType    string  `validate:"required"`
	Size        string  `validate:"required"`
	Color       string  `validate:"required"`
	RentalPrice float64 `validate:"gte=0"`
}

func NewBikeDetails(req BikeRequest) BikeDetails {
	return BikeDetails{
		BikeID:      req.BikeID,
		BikeType:    req.BikeType,
		Size:        req.Size,
		Color:       req.Color,
		RentalPrice: req.RentalPrice,
		Available:   true,
	}
}

// SameBikeID compares bike identifiers the way every lookup does: ignoring case.
func SameBikeID(a, b string) bool {
	return strings.EqualFold(a, b)
}

// MinutesToHours converts a duration entered in minutes to rental hours.
func MinutesToHours(minutes float64) float64 {
	return minutes / 60
}

func (b BikeDetails) CalculateRentalCost(hours float64) float64 {
	return b.RentalPrice * hours
}

func (c Customer) Encode() map[string]any {
	return map[string]any{
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"phone":      c.Phone,
	}
}

func DecodeCustomer(data map[string]any) (Customer, error) {
	d := decoder{entity: "customer", data: data}
	c := Customer{
		FirstName: d.str("first_name"),
		LastName:  d.str("last_name"),
		Phone:     d.str("phone"),
	}
	if d.err != nil {
		return Customer{}, d.err
	}
	return c, nil
}

func (b BikeDetails) Encode() map[string]any {
	return map[string]any{
		"bike_id":      b.BikeID,
		"bike_type":    b.BikeType,
		"size":         b.Size,
		"color":        b.Color,
		"rental_price": b.RentalPrice,
		"available":    b.Available,
	}
}

func DecodeBikeDetails(data map[string]any) (BikeDetails, error) {
	d := decoder{entity: "bike", data: data}
	b := BikeDetails{
		BikeID:      d.str("bike_id"),
		BikeType:    d.str("bike_type"),
		Size:        d.str("size"),
		Color:       d.str("color"),
		RentalPrice: d.num("rental_price"),
		Available:   d.optBool("available", true),
	}
	if d.err != nil {
		return BikeDetails{}, d.err
	}
	return b, nil
}

func (b Booking) Encode() map[string]any {
	m := map[string]any{
		"schema_version":     CurrentSchemaVersion,
		"customer_firstName": b.Customer.FirstName,
		"customer_lastName":  b.Customer.LastName,
		"customer_phone":     b.Customer.Phone,
		"bike_id":            b.BikeID,
		"rental_hours":       b.RentalHours,
		"total_cost":         b.TotalCost,
		"status":             string(b.Status),
	}
	if b.ID != uuid.Nil {
		m["booking_id"] = b.ID.String()
	}
	return m
}

func DecodeBooking(data map[string]any) (Booking, error) {
	d := decoder{entity: "booking", data: data}
	b := Booking{
		Customer: Customer{
			FirstName: d.str("customer_firstName"),
			LastName:  d.str("customer_lastName"),
			Phone:     d.str("customer_phone"),
		},
		BikeID:      d.str("bike_id"),
		RentalHours: d.num("rental_hours"),
		TotalCost:   d.num("total_cost"),
		Status:      BookingStatus(d.optStr("status", string(StatusActive))),
	}
	if raw := d.optStr("booking_id", ""); raw != "" && d.err == nil {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Booking{}, &DecodeError{Entity: "booking", Key: "booking_id", Reason: "is not a valid uuid"}
		}
		b.ID = id
	}
	if d.num("schema_version", 1) > CurrentSchemaVersion && d.err == nil {
		return Booking{}, &DecodeError{Entity: "booking", Key: "schema_version", Reason: "is newer than supported"}
	}
	if d.err != nil {
		return Booking{}, d.err
	}
	if b.Status != StatusActive && b.Status != StatusCompleted {
		return Booking{}, &DecodeError{Entity: "booking", Key: "status", Reason: fmt.Sprintf("has unknown value %q", b.Status)}
	}
	return b, nil
}

// decoder records the first failure so field extraction reads as a flat list.
type decoder struct {
	entity string
	data   map[string]any
	err    error
}

func (d *decoder) fail(key, reason string) {
	if d.err == nil {
		d.err = &DecodeError{Entity: d.entity, Key: key, Reason: reason}
	}
}

func (d *decoder) str(key string) string {
	v, ok := d.data[key]
	if !ok {
		d.fail(key, "is missing")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(key, "is not a string")
	}
	return s
}

func (d *decoder) optStr(key, def string) string {
	if _, ok := d.data[key]; !ok {
		return def
	}
	return d.str(key)
}

// num reads a number. JSON numbers arrive as float64; ints come from values
// built in memory. An optional default makes the key optional.
func (d *decoder) num(key string, def ...float64) float64 {
	v, ok := d.data[key]
	if !ok {
		if len(def) > 0 {
			return def[0]
		}
		d.fail(key, "is missing")
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		d.fail(key, "is not a number")
		return 0
	}
}

func (d *decoder) optBool(key string, def bool) bool {
	v, ok := d.data[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(key, "is not a boolean")
	}
	return b
}
