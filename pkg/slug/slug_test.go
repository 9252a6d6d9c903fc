// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/shopdesk/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Shoes", "shoes"},
		{"Running Shoes", "running-shoes"},
		{"  Bags & Wallets  ", "bags-and-wallets"},
		{"Giày Nữ", "giay-nu"},
		{"Đồ Điện Tử", "do-dien-tu"},
		{"Crème Brûlée", "creme-brulee"},
		{"Straße", "strasse"},
		{"T-Shirts -- 2026", "t-shirts-2026"},
		{"Hats/Caps", "hats-caps"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
