package rent

import (
	"fmt"
	"log"
	"time"

	"muhasebe-backend/internal/models"

	"gorm.io/gorm"
)

// Sweeper: Uygulama boşta dururken ay sınırı geçtiğinde de dönemlerin
// açılması için tüm tahsisli dükkanları periyodik tarar. Süreç başına tek
// instance çalıştırılır; Start/Stop yaşam döngüsü main'den yönetilir.
type Sweeper struct {
	db       *gorm.DB
	interval time.Duration
	now      func() time.Time // testlerde sabitlenebilir
	stop     chan struct{}
}

func NewSweeper(db *gorm.DB, interval time.Duration) *Sweeper {
	return &Sweeper{
		db:       db,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.RunOnce(); err != nil {
					log.Printf("Kira tahakkuk taraması hatası: %v", err)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	close(s.stop)
}

// RunOnce: Tek tarama turu. Testler bunu senkron çağırır.
func (s *Sweeper) RunOnce() error {
	var shops []models.Shop
	if err := s.db.
		Where("tenant_id IS NOT NULL AND allocated_at IS NOT NULL AND is_active = ?", true).
		Find(&shops).Error; err != nil {
		return err
	}

	// Tek dükkanın hatası turu durdurmaz, kalan dükkanlar taranmaya devam eder
	now := s.now()
	failed := 0
	for i := range shops {
		if err := EnsurePeriods(s.db, &shops[i], now); err != nil {
			log.Printf("Kira tahakkuku başarısız (dükkan %d): %v", shops[i].ID, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d dükkan için kira tahakkuku başarısız", failed)
	}
	return nil
}
