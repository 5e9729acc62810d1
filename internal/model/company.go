package model

// Company is the subset of an account company record the client relies on.
type Company struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"accountId"`
	CompanyCode string `json:"companyCode"`
	Name        string `json:"name"`
	IsDefault   bool   `json:"isDefault"`
	IsActive    bool   `json:"isActive"`
}

// CompanyList is the envelope returned by the company listing endpoint.
type CompanyList struct {
	Count int       `json:"@recordsetCount"`
	Value []Company `json:"value"`
}

// Default returns the first company flagged as default, or nil.
func (l CompanyList) Default() *Company {
	for i := range l.Value {
		if l.Value[i].IsDefault {
			c := l.Value[i]
			return &c
		}
	}
	return nil
}
