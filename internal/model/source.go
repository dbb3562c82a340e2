package model

// Source is a named message broker endpoint owned by one user
type Source struct {
	ID       string `gorm:"primaryKey;size:16" json:"id"`
	Owner    string `gorm:"uniqueIndex:idx_source_owner_name;not null" json:"-"`
	Name     string `gorm:"uniqueIndex:idx_source_owner_name;not null" json:"name"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Login    string `json:"login"`
	Passcode string `json:"passcode"`
	Vhost    string `json:"vhost"`
}
