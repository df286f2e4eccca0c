package service

import "velora/internal/app/catalog/entity"

// Диапазон по умолчанию для пустой популяции
const (
	defaultPriceMin = 0
	defaultPriceMax = 1000
)

// buildPriceMeta строит глобальный диапазон цен и гистограмму из 30 равных корзин
// по ценовой популяции (фильтры категории/материала/поиска без ценовых границ).
// Значение попадает в корзину i при bucketMin <= v < bucketMax; последняя корзина
// включает свою верхнюю границу
func buildPriceMeta(prices []float64) (entity.PriceRange, []entity.PriceBucket) {
	priceRange := entity.PriceRange{Min: defaultPriceMin, Max: defaultPriceMax}

	if len(prices) > 0 {
		priceRange.Min, priceRange.Max = prices[0], prices[0]
		for _, v := range prices[1:] {
			if v < priceRange.Min {
				priceRange.Min = v
			}
			if v > priceRange.Max {
				priceRange.Max = v
			}
		}
	}

	width := (priceRange.Max - priceRange.Min) / entity.HistogramBuckets
	if width == 0 {
		// Вырожденный диапазон (max == min): ширина 1, чтобы не делить на ноль
		width = 1
	}

	buckets := make([]entity.PriceBucket, entity.HistogramBuckets)
	for i := range buckets {
		buckets[i] = entity.PriceBucket{
			Min: priceRange.Min + float64(i)*width,
			Max: priceRange.Min + float64(i+1)*width,
		}
	}

	for _, v := range prices {
		idx := int((v - priceRange.Min) / width)
		if idx >= entity.HistogramBuckets {
			idx = entity.HistogramBuckets - 1
		}
		buckets[idx].Count++
	}

	return priceRange, buckets
}
