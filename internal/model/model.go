// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Gender of a card holder.
type Gender string

// Known genders.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the known values.
func (g Gender) Valid() bool { return g == GenderMale || g == GenderFemale }

// MaritalStatus of a card holder.
type MaritalStatus string

// Known marital statuses.
const (
	MaritalSingle  MaritalStatus = "single"
	MaritalMarried MaritalStatus = "married"
)

// Valid reports whether m is one of the known values.
func (m MaritalStatus) Valid() bool { return m == MaritalSingle || m == MaritalMarried }

// MediaKind distinguishes image and video attachments.
type MediaKind string

// Known media kinds.
const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Valid reports whether k is one of the known values.
func (k MediaKind) Valid() bool { return k == MediaImage || k == MediaVideo }

// Card is a personal-data record. ID and CreatedAt are assigned by the store.
type Card struct {
	ID             uuid.UUID     `json:"id"`
	Identifier     string        `json:"idNumber"` // 3 digits, unique
	Code           string        `json:"code"`     // 3 uppercase letters, unique
	FirstName      string        `json:"firstName"`
	Surname        string        `json:"surname"`
	City           string        `json:"city"`
	Identity       string        `json:"identity"` // identity-document type
	Gender         Gender        `json:"gender"`
	MaritalStatus  MaritalStatus `json:"maritalStatus"`
	SocialPlatform string        `json:"socialPlatform,omitempty"`
	SocialLink     string        `json:"socialId,omitempty"`
	DriveLink      string        `json:"driveLink,omitempty"`
	ProfilePicture string        `json:"profilePicture,omitempty"` // opaque encoded image
	CreatedAt      time.Time     `json:"createdAt"`
}

// FullName joins first name and surname the way search and sort see it.
func (c Card) FullName() string { return c.FirstName + " " + c.Surname }

// CardInput carries the caller-supplied fields of a new card.
type CardInput struct {
	Identifier     string
	Code           string
	FirstName      string
	Surname        string
	City           string
	Identity       string
	Gender         Gender
	MaritalStatus  MaritalStatus
	SocialPlatform string
	SocialLink     string
	DriveLink      string
	ProfilePicture string
}

// CardPatch is a partial update; nil fields are left untouched.
type CardPatch struct {
	Identifier     *string
	Code           *string
	FirstName      *string
	Surname        *string
	City           *string
	Identity       *string
	Gender         *Gender
	MaritalStatus  *MaritalStatus
	SocialPlatform *string
	SocialLink     *string
	DriveLink      *string
	ProfilePicture *string
}

// Apply merges the patch into c and returns the result.
func (p CardPatch) Apply(c Card) Card {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Identifier, p.Identifier)
	set(&c.Code, p.Code)
	set(&c.FirstName, p.FirstName)
	set(&c.Surname, p.Surname)
	set(&c.City, p.City)
	set(&c.Identity, p.Identity)
	set(&c.SocialPlatform, p.SocialPlatform)
	set(&c.SocialLink, p.SocialLink)
	set(&c.DriveLink, p.DriveLink)
	set(&c.ProfilePicture, p.ProfilePicture)
	if p.Gender != nil {
		c.Gender = *p.Gender
	}
	if p.MaritalStatus != nil {
		c.MaritalStatus = *p.MaritalStatus
	}
	return c
}

// Sheet is a named rectangular grid of text cells (a "tabular file").
type Sheet struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Data         [][]string `json:"data"`
	LastModified time.Time  `json:"lastModified"`
}

// SheetInput carries the caller-supplied fields of a new sheet.
type SheetInput struct {
	Name string
	Data [][]string
}

// SheetPatch is a partial update; nil fields are left untouched.
type SheetPatch struct {
	Name *string
	Data [][]string
}

// MediaAsset is an image or video attached to a card.
type MediaAsset struct {
	ID        uuid.UUID `json:"id"`
	CardID    uuid.UUID `json:"cardId"`
	Name      string    `json:"name"`
	Kind      MediaKind `json:"type"`
	Data      string    `json:"data"` // encoded payload, stored verbatim
	CreatedAt time.Time `json:"createdAt"`
}

// MediaInput carries the caller-supplied fields of a new media asset.
type MediaInput struct {
	CardID uuid.UUID
	Name   string
	Kind   MediaKind
	Data   string
}

// Settings holds user preferences.
type Settings struct {
	DarkMode bool `json:"darkMode"`
}

// PINRecord is the stored Argon2id hash of the current PIN.
type PINRecord struct {
	Hash []byte `json:"hash"`
	Salt []byte `json:"salt"`
}

// Empty reports whether no PIN was ever set.
func (r PINRecord) Empty() bool { return len(r.Hash) == 0 }
