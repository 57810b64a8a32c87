package analyticssvc

import (
	"sort"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/api/analytics/models"
)

// RankingLimit là số dòng tối đa của mỗi bảng xếp hạng
const RankingLimit = 5

func toRanking(ps ProductSales) analyticsdto.ProductRanking {
	return analyticsdto.ProductRanking{
		ProductID:        ps.ProductID,
		ProductName:      ps.ProductName,
		QuantitySold:     Round2(ps.Quantity),
		Revenue:          Round2(ps.Revenue),
		AverageUnitPrice: Round2(ps.AvgUnitPrice),
	}
}

// rankBy sort bản sao của sales theo score giảm dần (hòa thì theo productId) và lấy RankingLimit dòng
func rankBy(sales []ProductSales, score func(ProductSales) float64, keep func(ProductSales) bool, decorate func(*analyticsdto.ProductRanking, ProductSales)) []analyticsdto.ProductRanking {
	items := make([]ProductSales, 0, len(sales))
	for _, s := range sales {
		if keep == nil || keep(s) {
			items = append(items, s)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := score(items[i]), score(items[j])
		if si != sj {
			return si > sj
		}
		return items[i].ProductID < items[j].ProductID
	})
	if len(items) > RankingLimit {
		items = items[:RankingLimit]
	}
	out := make([]analyticsdto.ProductRanking, 0, len(items))
	for _, it := range items {
		r := toRanking(it)
		if decorate != nil {
			decorate(&r, it)
		}
		out = append(out, r)
	}
	return out
}

// TopSellers xếp theo số lượng bán
func TopSellers(sales []ProductSales) []analyticsdto.ProductRanking {
	return rankBy(sales, func(s ProductSales) float64 { return s.Quantity }, func(s ProductSales) bool { return s.Quantity > 0 }, nil)
}

// BestPerformers xếp theo doanh thu
func BestPerformers(sales []ProductSales) []analyticsdto.ProductRanking {
	return rankBy(sales, func(s ProductSales) float64 { return s.Revenue }, func(s ProductSales) bool { return s.Revenue > 0 }, nil)
}

// ProfitMargin xấp xỉ biên lợi nhuận = (doanh thu / số lượng) / đơn giá trung bình * 100.
// Không có giá vốn trên từng dòng hàng nên đây không phải biên lợi nhuận thật.
func ProfitMargin(s ProductSales) float64 {
	if s.Quantity <= 0 || s.AvgUnitPrice <= 0 {
		return 0
	}
	return Round2(safeDiv(safeDiv(s.Revenue, s.Quantity), s.AvgUnitPrice) * 100)
}

// MostProfitable xếp theo ProfitMargin
func MostProfitable(sales []ProductSales) []analyticsdto.ProductRanking {
	return rankBy(sales, ProfitMargin,
		func(s ProductSales) bool { return ProfitMargin(s) > 0 },
		func(r *analyticsdto.ProductRanking, s ProductSales) { r.ProfitMargin = ProfitMargin(s) },
	)
}

// FastestMoving xếp theo số lượng bán mỗi ngày trong kỳ
func FastestMoving(sales []ProductSales, days int) []analyticsdto.ProductRanking {
	if days <= 0 {
		days = 1
	}
	perDay := func(s ProductSales) float64 { return safeDiv(s.Quantity, float64(days)) }
	return rankBy(sales, perDay,
		func(s ProductSales) bool { return s.Quantity > 0 },
		func(r *analyticsdto.ProductRanking, s ProductSales) { r.UnitsPerDay = Round2(perDay(s)) },
	)
}

// WorstPerformers là sản phẩm còn hàng nhưng không có dòng bán nào trong kỳ, tồn kho nhiều xếp trước
func WorstPerformers(inStock []models.Product, sales []ProductSales) []analyticsdto.ProductRanking {
	sold := make(map[string]bool, len(sales))
	for _, s := range sales {
		if s.Lines > 0 {
			sold[s.ProductID] = true
		}
	}
	idle := make([]models.Product, 0)
	for _, p := range inStock {
		if p.StockQuantity > 0 && !sold[p.ID.Hex()] {
			idle = append(idle, p)
		}
	}
	sort.SliceStable(idle, func(i, j int) bool {
		if idle[i].StockQuantity != idle[j].StockQuantity {
			return idle[i].StockQuantity > idle[j].StockQuantity
		}
		return idle[i].Name < idle[j].Name
	})
	if len(idle) > RankingLimit {
		idle = idle[:RankingLimit]
	}
	out := make([]analyticsdto.ProductRanking, 0, len(idle))
	for _, p := range idle {
		out = append(out, analyticsdto.ProductRanking{
			ProductID:        p.ID.Hex(),
			ProductName:      p.Name,
			AverageUnitPrice: Round2(p.Price),
			StockQuantity:    p.StockQuantity,
			LowStock:         p.IsLowStock(),
		})
	}
	return out
}
