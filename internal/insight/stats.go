package insight

import "math"

// =============================================================================
// Correlation Statistics
// =============================================================================

// Pearson 피어슨 상관계수 계산
// Returns false when the coefficient is undefined: fewer than 2 samples,
// mismatched lengths, or zero variance in either series.
func Pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0, false
	}

	var mx, my float64
	for i := 0; i < n; i++ {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxx, syy, sxy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}

	// 분산 0 → 상관계수 정의 불가
	if sxx == 0 || syy == 0 {
		return 0, false
	}

	r := sxy / math.Sqrt(sxx*syy)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

// StudentTPValue 피어슨 r에 대한 양측 t-검정 p값
// t = r·sqrt((n-2)/(1-r²)) with n-2 degrees of freedom; the two-tailed
// p-value is the regularized incomplete beta I_x(df/2, 1/2) at
// x = df/(df+t²), which is exact, not an approximation.
func StudentTPValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	df := float64(n - 2)

	denom := 1 - r*r
	if denom <= 0 {
		// |r| = 1: the fit is exact, the tail mass is zero
		return 0
	}

	t := r * math.Sqrt(df/denom)
	x := df / (df + t*t)
	return regIncBeta(df/2, 0.5, x)
}

// =============================================================================
// Special Functions
// =============================================================================

// regIncBeta 정규화 불완전 베타 함수 I_x(a, b)
// Continued-fraction evaluation (Lentz's method), following the classic
// Numerical Recipes treatment.
func regIncBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lgab, _ := math.Lgamma(a + b)
	lga, _ := math.Lgamma(a)
	lgb, _ := math.Lgamma(b)
	front := math.Exp(lgab - lga - lgb + a*math.Log(x) + b*math.Log(1-x))

	// 수렴이 빠른 쪽을 선택
	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

// betaCF evaluates the continued fraction for the incomplete beta function.
func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		fpMin   = 1e-300
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpMin {
		d = fpMin
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		fm := float64(m)
		m2 := 2 * fm

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpMin {
			d = fpMin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpMin {
			c = fpMin
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpMin {
			d = fpMin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpMin {
			c = fpMin
		}
		d = 1 / d

		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}
