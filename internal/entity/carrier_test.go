package entity_test

import (
	"testing"

	"github.com/mapuy555/warranty-server/internal/entity"

	"github.com/stretchr/testify/require"
)

func TestInferCarrier(t *testing.T) {
	testCases := []struct {
		freetext string
		expected entity.CarrierSlug
	}{
		{"Kerry Express", entity.CarrierKerry},
		{"KERRY", entity.CarrierKerry},
		{"Flash Express (TH)", entity.CarrierFlash},
		{"J&T Express", entity.CarrierJNT},
		{"jnt", entity.CarrierJNT},
		{"Thailand Post EMS", entity.CarrierThailandPost},
		{"ไปรษณีย์ไทย", entity.CarrierThailandPost},
		{"DHL eCommerce", entity.CarrierDHL},
		{"Ninja Van", entity.CarrierNinjaVan},
		{"Shopee Xpress SPX", entity.CarrierSPX},
		{"BEST Express", entity.CarrierBest},
		{"", entity.CarrierUnknown},
		{"Some Local Courier", entity.CarrierUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.freetext, func(t *testing.T) {
			require.Equal(t, tc.expected, entity.InferCarrier(tc.freetext))
		})
	}
}
