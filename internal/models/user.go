package models

import (
	"golang.org/x/crypto/bcrypt"
)

// UserType is the account category reported in statistics.
type UserType string

const (
	UserTypeStudent  UserType = "aluno"
	UserTypeEmployee UserType = "funcionario"
	UserTypeAdmin    UserType = "admin"
)

// User is the account returned by /registro.
type User struct {
	ID       int      `json:"id"`
	FullName string   `json:"nome"`
	Email    string   `json:"email"`
	Password string   `json:"-"`
	Type     UserType `json:"tipo,omitempty"`
}

// RegisterRequest is the body of POST /registro.
type RegisterRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// RegisterResponse wraps the created account.
type RegisterResponse struct {
	Message string `json:"mensagem,omitempty"`
	User    User   `json:"usuario"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
