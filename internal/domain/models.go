// Package domain defines the persistence models for VanillaSoft webhook
// events. These types are mapped with GORM and form the data layer of the
// webhook bridge.
//
// Every vendor-supplied column is nullable: a field missing from the payload
// is stored as NULL, never defaulted. Vendor timestamps are kept as the UTC
// text VanillaSoft sent.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CallHistory is one call-history event as reported by VanillaSoft. Rows are
// append-only: every received webhook produces a new row and nothing in this
// service updates or deletes them.
//
// Fields:
//   - ID: surrogate auto-increment primary key.
//   - ContactID: VanillaSoft contact the call belongs to (indexed, not unique).
//   - CallDateUTC / EventDateUTC / ModifiedUTC: vendor timestamps.
//   - ReceivedAt: server time the webhook was persisted.
type CallHistory struct {
	ID                    uint64    `json:"id"                      gorm:"primaryKey;autoIncrement"`
	ContactID             *string   `json:"contact_id"              gorm:"type:varchar(64);index:idx_call_history_contact"`
	CallDateUTC           *string   `json:"call_date_utc"           gorm:"column:call_date_utc;type:varchar(64)"`
	Comment               *string   `json:"comment"                 gorm:"type:text"`
	ResultCode            *string   `json:"result_code"             gorm:"type:varchar(128)"`
	ResultGroup           *string   `json:"result_group"            gorm:"type:varchar(128)"`
	TimeOffset            *string   `json:"time_offset"             gorm:"type:varchar(32)"`
	Username              *string   `json:"username"                gorm:"type:varchar(255)"`
	EventDateUTC          *string   `json:"event_date_utc"          gorm:"column:event_date_utc;type:varchar(64)"`
	ModifiedUTC           *string   `json:"modified_utc"            gorm:"column:modified_utc;type:varchar(64)"`
	ScheduledCallUsername *string   `json:"scheduled_call_username" gorm:"type:varchar(255)"`
	CallID                *string   `json:"call_id"                 gorm:"type:varchar(64)"`
	ReceivedAt            time.Time `json:"received_at"             gorm:"autoCreateTime"`
}

// TableName returns the database table name for CallHistory.
func (CallHistory) TableName() string { return "call_history" }

// Contact is a VanillaSoft contact snapshot. ContactID is the natural key:
// at most one row exists per contact, and later webhooks for the same
// contact are dropped rather than merged.
//
// NumberOfEmployees always holds a JSON array (the vendor sends either a
// scalar or a list) or NULL.
type Contact struct {
	ID                        uint64         `json:"id"                           gorm:"primaryKey;autoIncrement"`
	ContactID                 *string        `json:"contact_id"                   gorm:"type:varchar(64);uniqueIndex:ux_contacts_contact_id"`
	FirstName                 *string        `json:"first_name"                   gorm:"type:varchar(255)"`
	LastName                  *string        `json:"last_name"                    gorm:"type:varchar(255)"`
	Company                   *string        `json:"company"                      gorm:"type:varchar(255)"`
	Email                     *string        `json:"email"                        gorm:"type:varchar(255)"`
	Address1                  *string        `json:"address1"                     gorm:"column:address1;type:varchar(255)"`
	Address2                  *string        `json:"address2"                     gorm:"column:address2;type:varchar(255)"`
	City                      *string        `json:"city"                         gorm:"type:varchar(128)"`
	State                     *string        `json:"state"                        gorm:"type:varchar(64)"`
	PostalCode                *string        `json:"postal_code"                  gorm:"type:varchar(32)"`
	Country                   *string        `json:"country"                      gorm:"type:varchar(64)"`
	AnnualRevenue             *string        `json:"annual_revenue"               gorm:"type:varchar(64)"`
	NumberOfEmployees         datatypes.JSON `json:"number_of_employees"          gorm:"column:number_of_employees"`
	NumberOfOwners            *string        `json:"number_of_owners"             gorm:"type:varchar(64)"`
	Industry                  *string        `json:"industry"                     gorm:"type:varchar(255)"`
	PrimarySICCode            *string        `json:"primary_sic_code"             gorm:"column:primary_sic_code;type:varchar(32)"`
	PrimarySICCodeDescription *string        `json:"primary_sic_code_description" gorm:"column:primary_sic_code_description;type:varchar(255)"`
	Classification            *string        `json:"classification"               gorm:"type:varchar(128)"`
	HVT                       *string        `json:"hvt"                          gorm:"column:hvt;type:varchar(32)"`
	Market                    *string        `json:"market"                       gorm:"type:varchar(128)"`
	Website                   *string        `json:"website"                      gorm:"type:varchar(255)"`
	ModifiedUTC               *string        `json:"modified_utc"                 gorm:"column:modified_utc;type:varchar(64)"`
	CreatedUTC                *string        `json:"created_utc"                  gorm:"column:created_utc;type:varchar(64)"`
	ContactOwnerUsername      *string        `json:"contact_owner_username"       gorm:"type:varchar(255)"`
	CallFlag                  *string        `json:"call_flag"                    gorm:"type:varchar(32)"`
	ClosedFlag                *string        `json:"closed_flag"                  gorm:"type:varchar(32)"`
	ReceivedAt                time.Time      `json:"received_at"                  gorm:"autoCreateTime"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contacts" }
