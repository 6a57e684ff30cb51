package ledger

import (
	"math"

	"muhasebe-backend/internal/models"
)

// Tüm parasal değerler 2 ondalık basamağa sabitlenir; her aritmetik sonucu
// kayda geçmeden önce yeniden yuvarlanır ki float kayması birikmesin.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Recompute: Bir kira döneminin kalan tutarını ve durumunu türetir.
// pending = max(amount - paid, 0); pending sıfırsa dönem "paid" olur.
func Recompute(amount, paidAmount float64) (pending float64, status models.RentStatus) {
	pending = Round2(amount - paidAmount)
	if pending < 0 {
		pending = 0
	}
	if pending == 0 {
		return pending, models.RentStatusPaid
	}
	return pending, models.RentStatusPending
}
