package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v4"
)

func TestOccupancyPercentage(t *testing.T) {
	tests := []struct {
		name  string
		free  null.Int
		total int
		want  null.Float
	}{
		{"all spots free", null.IntFrom(200), 200, null.FloatFrom(0)},
		{"no spots free", null.IntFrom(0), 200, null.FloatFrom(100)},
		{"half full", null.IntFrom(100), 200, null.FloatFrom(50)},
		{"rounded to one decimal", null.IntFrom(1), 3, null.FloatFrom(66.7)},
		{"over capacity clamps to zero occupancy", null.IntFrom(250), 200, null.FloatFrom(0)},
		{"no free count", null.Int{}, 200, null.Float{}},
		{"zero total undefined", null.IntFrom(10), 0, null.Float{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parking{Status: StatusOperational, TotalSpots: tt.total, FreeSpots: tt.free}
			assert.Equal(t, tt.want, p.OccupancyPercentage())
		})
	}
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, Parking{Status: StatusOperational, FreeSpots: null.IntFrom(5)}.IsAvailable())
	assert.False(t, Parking{Status: StatusOperational, FreeSpots: null.IntFrom(0)}.IsAvailable())
	assert.False(t, Parking{Status: StatusOperational}.IsAvailable())
	assert.False(t, Parking{Status: StatusOutOfService, FreeSpots: null.IntFrom(5)}.IsAvailable())
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "out of service", Parking{Status: StatusOutOfService, FreeSpots: null.IntFrom(10)}.StatusLabel())
	assert.Equal(t, "no data", Parking{Status: StatusOperational}.StatusLabel())
	assert.Equal(t, "full", Parking{Status: StatusOperational, FreeSpots: null.IntFrom(0)}.StatusLabel())
	assert.Equal(t, "open", Parking{Status: StatusOperational, FreeSpots: null.IntFrom(1)}.StatusLabel())
}

func TestNewParkingView(t *testing.T) {
	p := Parking{ID: 1, Name: "Roma", Status: StatusOperational, TotalSpots: 100, FreeSpots: null.IntFrom(40)}
	detail := &ParkingDetail{ParkingID: 1, Address: "Corso Bolzano 10"}

	view := NewParkingView(p, detail)
	assert.Equal(t, "open", view.StatusLabel)
	assert.True(t, view.IsAvailable)
	assert.Equal(t, null.FloatFrom(60), view.OccupancyPercentage)
	assert.Same(t, detail, view.Detail)

	bare := NewParkingView(p, nil)
	assert.Nil(t, bare.Detail)
}
