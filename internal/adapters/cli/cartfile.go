package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen/postage-service/internal/adapters/http/dto"
)

// cartFile is the YAML document quoted by postagectl quote.
type cartFile struct {
	ID          string         `yaml:"id"`
	Currency    string         `yaml:"currency"`
	Items       []cartFileItem `yaml:"items"`
	Destination destination    `yaml:"destination"`
}

type cartFileItem struct {
	Ref       string  `yaml:"ref"`
	Quantity  int     `yaml:"quantity"`
	UnitPrice string  `yaml:"unit_price"`
	Weight    float64 `yaml:"weight"`
}

type destination struct {
	Country  string `yaml:"country"`
	State    string `yaml:"state"`
	City     string `yaml:"city"`
	ZipCode  string `yaml:"zip_code"`
	Address1 string `yaml:"address1"`
}

func readCartFile(path string) (*cartFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cart file: %w", err)
	}

	var f cartFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing cart file %s: %w", path, err)
	}

	return &f, nil
}

// request converts the file into the HTTP request shape so both inbound
// adapters share one set of validation rules. A street or zip code makes
// the destination a full address.
func (f *cartFile) request(module string) *dto.QuoteRequest {
	req := &dto.QuoteRequest{
		Module: module,
		Cart: dto.CartDTO{
			ID:       f.ID,
			Currency: f.Currency,
			Items:    make([]dto.CartItemDTO, 0, len(f.Items)),
		},
	}

	for _, item := range f.Items {
		req.Cart.Items = append(req.Cart.Items, dto.CartItemDTO{
			Ref:       item.Ref,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Weight:    item.Weight,
		})
	}

	d := f.Destination
	if d.ZipCode != "" || d.Address1 != "" || d.City != "" {
		req.Address = &dto.AddressDTO{
			Address1: d.Address1,
			City:     d.City,
			ZipCode:  d.ZipCode,
			Country:  d.Country,
			State:    d.State,
		}
	} else {
		req.Country = d.Country
		req.State = d.State
	}

	return req
}
