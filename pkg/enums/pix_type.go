package enums

import "fmt"

// PixType identifies the kind of PIX key a seller is paid out to.
type PixType string

const (
	PixTypeCPF       PixType = "CPF"
	PixTypeCNPJ      PixType = "CNPJ"
	PixTypeEmail     PixType = "Email"
	PixTypeTelefone  PixType = "Telefone"
	PixTypeAleatoria PixType = "Chave Aleatória"
)

var validPixTypes = []PixType{
	PixTypeCPF,
	PixTypeCNPJ,
	PixTypeEmail,
	PixTypeTelefone,
	PixTypeAleatoria,
}

func (p PixType) String() string {
	return string(p)
}

func (p PixType) IsValid() bool {
	for _, candidate := range validPixTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePixType converts raw input into a PixType.
func ParsePixType(value string) (PixType, error) {
	for _, candidate := range validPixTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pix type %q", value)
}
