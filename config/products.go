package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"dropwatch/models"
)

// LoadProducts reads the tracked-product list from a JSON or YAML file.
// The JSON shape matches the historical products.json format; YAML files
// use a top-level "products" list.
func LoadProducts(path string) ([]models.ProductSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products file: %w", err)
	}

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		var doc struct {
			Products []models.ProductSpec `yaml:"products"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse products yaml: %w", err)
		}
		return doc.Products, nil
	}

	var products []models.ProductSpec
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse products json: %w", err)
	}
	return products, nil
}
