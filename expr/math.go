/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package expr

import "math"

var argX = []FuncParam{{"x", "value"}}
var argXY = []FuncParam{{"x", "first value"}, {"y", "second value"}}

func unary(fn func(float64) float64) func([]float32) float32 {
	return func(a []float32) float32 {
		return float32(fn(float64(a[0])))
	}
}

func truth(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func declareMath(t *FuncTable) {
	t.DeclareTitle("Arithmetic")

	t.Declare(&Func{"int", "rounds x down to the next integer", argX, unary(math.Floor)})
	t.Declare(&Func{"abs", "absolute value of x", argX, unary(math.Abs)})
	t.Declare(&Func{"sqr", "x squared", argX, func(a []float32) float32 {
		return a[0] * a[0]
	}})
	t.Declare(&Func{"sqrt", "square root of x", argX, unary(math.Sqrt)})
	t.Declare(&Func{"pow", "x raised to the power of y", argXY, func(a []float32) float32 {
		return float32(math.Pow(float64(a[0]), float64(a[1])))
	}})
	t.Declare(&Func{"exp", "e raised to the power of x", argX, unary(math.Exp)})
	t.Declare(&Func{"log", "natural logarithm of x", argX, unary(math.Log)})
	t.Declare(&Func{"log10", "decimal logarithm of x", argX, unary(math.Log10)})
	t.Declare(&Func{"sign", "-1, 0 or 1 depending on the sign of x", argX, func(a []float32) float32 {
		switch {
		case a[0] > 0:
			return 1
		case a[0] < 0:
			return -1
		}
		return 0
	}})
	t.Declare(&Func{"min", "the smaller of x and y", argXY, func(a []float32) float32 {
		if a[0] < a[1] {
			return a[0]
		}
		return a[1]
	}})
	t.Declare(&Func{"max", "the larger of x and y", argXY, func(a []float32) float32 {
		if a[0] > a[1] {
			return a[0]
		}
		return a[1]
	}})
	t.Declare(&Func{"sigmoid", "logistic function 1/(1+exp(-x*y))", argXY, func(a []float32) float32 {
		d := 1 + math.Exp(-float64(a[0])*float64(a[1]))
		if math.Abs(d) > 0.00001 {
			return float32(1 / d)
		}
		return 0
	}})
	t.Declare(&Func{"fact", "factorial of the integer part of x", argX, func(a []float32) float32 {
		result := 1.0
		for k := int(a[0]); k > 1 && !math.IsInf(result, 1); k-- {
			result *= float64(k)
		}
		return float32(result)
	}})
	t.Declare(&Func{"nchoosek", "binomial coefficient of the integer parts of n and k", []FuncParam{
		{"n", "set size"},
		{"k", "subset size"},
	}, func(a []float32) float32 {
		n, k := int(a[0]), int(a[1])
		if k < 0 || n < 0 || k > n {
			return 0
		}
		if k > n-k {
			k = n - k
		}
		result := 1.0
		for i := 1; i <= k && !math.IsInf(result, 1); i++ {
			result = result * float64(n-k+i) / float64(i)
		}
		return float32(math.Round(result))
	}})
	t.Declare(&Func{"rand", "random integer in [0, n); returns 1 for n < 1", []FuncParam{{"n", "upper bound"}}, func(a []float32) float32 {
		n := int(a[0])
		if n <= 0 {
			return 1
		}
		return float32(t.rng.IntN(n))
	}})

	t.DeclareTitle("Trigonometry")

	t.Declare(&Func{"sin", "sine of x in radians", argX, unary(math.Sin)})
	t.Declare(&Func{"cos", "cosine of x in radians", argX, unary(math.Cos)})
	t.Declare(&Func{"tan", "tangent of x in radians", argX, unary(math.Tan)})
	t.Declare(&Func{"asin", "arc sine of x", argX, unary(math.Asin)})
	t.Declare(&Func{"acos", "arc cosine of x", argX, unary(math.Acos)})
	t.Declare(&Func{"atan", "arc tangent of x", argX, unary(math.Atan)})
	t.Declare(&Func{"atan2", "angle of the point (y, x)", []FuncParam{
		{"y", "ordinate"},
		{"x", "abscissa"},
	}, func(a []float32) float32 {
		return float32(math.Atan2(float64(a[0]), float64(a[1])))
	}})

	t.DeclareTitle("Logic")

	t.Declare(&Func{"if", "returns a unless cond is 0, then b", []FuncParam{
		{"cond", "condition"},
		{"a", "value when cond is not 0"},
		{"b", "value when cond is 0"},
	}, func(a []float32) float32 {
		if a[0] == 0 {
			return a[2]
		}
		return a[1]
	}})
	t.Declare(&Func{"equal", "1 if x equals y, else 0", argXY, func(a []float32) float32 {
		return truth(a[0] == a[1])
	}})
	t.Declare(&Func{"above", "1 if x is greater than y, else 0", argXY, func(a []float32) float32 {
		return truth(a[0] > a[1])
	}})
	t.Declare(&Func{"below", "1 if x is less than y, else 0", argXY, func(a []float32) float32 {
		return truth(a[0] < a[1])
	}})
	t.Declare(&Func{"band", "1 if both x and y are not 0", argXY, func(a []float32) float32 {
		return truth(a[0] != 0 && a[1] != 0)
	}})
	t.Declare(&Func{"bor", "1 if x or y is not 0", argXY, func(a []float32) float32 {
		return truth(a[0] != 0 || a[1] != 0)
	}})
	t.Declare(&Func{"bnot", "1 if x is 0, else 0", argX, func(a []float32) float32 {
		return truth(a[0] == 0)
	}})
}
