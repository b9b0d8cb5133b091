package sensitivity

import (
	"math"
	"sync"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/model"
)

// TwoWayResult is a grid sweep over two parameters. Rows follow Param1's
// sweep points, columns Param2's. NaN marks unevaluable cells.
type TwoWayResult struct {
	Param1       dcf.Parameter `json:"param1"`
	Param2       dcf.Parameter `json:"param2"`
	Param1Values []float64     `json:"param1_values"`
	Param2Values []float64     `json:"param2_values"`
	Matrix       [][]float64   `json:"valuation_matrix"`
	MinValuation float64       `json:"min_valuation"`
	MaxValuation float64       `json:"max_valuation"`
}

// TwoWay evaluates the DCF over the Cartesian product of two parameter
// sweeps. Cells are independent, so rows are evaluated concurrently.
func (a *Analyzer) TwoWay(p1, p2 dcf.Parameter, r1, r2 *Range, steps int) (*TwoWayResult, error) {
	if p1 == p2 {
		return nil, &model.ValidationError{Field: "parameter", Message: "two-way sweep needs two distinct parameters"}
	}
	if _, err := a.baseParamValue(p1); err != nil {
		return nil, err
	}
	if _, err := a.baseParamValue(p2); err != nil {
		return nil, err
	}
	if steps <= 0 {
		steps = DefaultSteps
	}

	w1 := a.defaultRange(p1)
	if r1 != nil {
		w1 = *r1
	}
	w2 := a.defaultRange(p2)
	if r2 != nil {
		w2 = *r2
	}

	rows := linspace(w1.Min, w1.Max, steps)
	cols := linspace(w2.Min, w2.Max, steps)

	matrix := make([][]float64, len(rows))
	var wg sync.WaitGroup
	for i, v1 := range rows {
		wg.Add(1)
		go func(i int, v1 float64) {
			defer wg.Done()
			row := make([]float64, len(cols))
			for j, v2 := range cols {
				res, err := dcf.Valuation(a.company, dcf.Assumptions{}.WithParam(p1, v1).WithParam(p2, v2))
				if err != nil {
					row[j] = math.NaN()
					continue
				}
				row[j] = res.Value
			}
			matrix[i] = row
		}(i, v1)
	}
	wg.Wait()

	minV, maxV := math.Inf(1), math.Inf(-1)
	valid := false
	for _, row := range matrix {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			valid = true
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
	}
	if !valid {
		return nil, &model.DomainError{Param: string(p1) + "/" + string(p2), Message: "no grid cell produced a valid valuation"}
	}

	return &TwoWayResult{
		Param1:       p1,
		Param2:       p2,
		Param1Values: rows,
		Param2Values: cols,
		Matrix:       matrix,
		MinValuation: minV,
		MaxValuation: maxV,
	}, nil
}
