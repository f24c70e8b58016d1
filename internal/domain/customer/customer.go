package customer

import "time"

type IDCardType string

const (
	IDCardNID           IDCardType = "nid"
	IDCardPassport      IDCardType = "passport"
	IDCardDriverLicense IDCardType = "driverLicense"
	IDCardNone          IDCardType = "none"
)

type Customer struct {
	ID                   string     `json:"id"`
	FullNameLatin        string     `json:"full_name_latin"`
	FullNameKhmer        *string    `json:"full_name_khmer,omitempty"`
	DateOfBirth          *time.Time `json:"date_of_birth,omitempty"`
	IDCardType           IDCardType `json:"id_card_type"`
	IDNumber             *string    `json:"id_number,omitempty"`
	PortfolioOfficerName *string    `json:"portfolio_officer_name,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
