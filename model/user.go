package model

type User struct {
	DTO
	Name     string `gorm:"not null;default:Student" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
}

// Owner holds the bcrypt hash of the shared admin master key.
type Owner struct {
	DTO
	MasterKey string `gorm:"not null" json:"-"`
}

type RegisterInput struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OwnerLoginInput struct {
	MasterKey string `json:"mkey" validate:"required"`
}
