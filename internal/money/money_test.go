package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Amount
		wantErr bool
	}{
		{name: "integer", input: "300", want: 30000},
		{name: "one decimal", input: "12.5", want: 1250},
		{name: "two decimals", input: "0.01", want: 1},
		{name: "zero", input: "0", want: 0},
		{name: "negative", input: "-1", wantErr: true},
		{name: "sub-kopeck precision", input: "1.005", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "0.00", Zero.String())
	assert.Equal(t, "100.00", FromMinor(10000).String())
	assert.Equal(t, "-0.33", FromMinor(-33).String())
}

func TestAmountJSON(t *testing.T) {
	t.Run("encodes as decimal string", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Price Amount `json:"price"`
		}{Price: 1234})
		require.NoError(t, err)
		assert.JSONEq(t, `{"price":"12.34"}`, string(data))
	})

	t.Run("decodes string and number without float drift", func(t *testing.T) {
		var v struct {
			A Amount `json:"a"`
			B Amount `json:"b"`
			C Amount `json:"c"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"a":"0.10","b":0.29,"c":"-2.50"}`), &v))
		assert.Equal(t, Amount(10), v.A)
		assert.Equal(t, Amount(29), v.B)
		assert.Equal(t, Amount(-250), v.C)
	})

	t.Run("null leaves pointer nil", func(t *testing.T) {
		var v struct {
			Price *Amount `json:"price"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"price":null}`), &v))
		assert.Nil(t, v.Price)
	})

	t.Run("rejects over-precise input", func(t *testing.T) {
		var a Amount
		err := json.Unmarshal([]byte(`"1.999"`), &a)
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Amount(0).Validate())
	assert.NoError(t, Amount(1).Validate())
	assert.ErrorIs(t, Amount(-1).Validate(), ErrInvalid)
}
