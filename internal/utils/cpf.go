package utils

// CPF validation.  A CPF is an 11 digit Brazilian identity number whose
// last two digits are modulus-11 check digits computed over the first
// nine.  Repeated-digit sequences (e.g. "11111111111") pass the
// arithmetic but are reserved and therefore rejected.

// ValidCPF reports whether s is a structurally valid CPF: exactly 11
// ASCII digits with correct check digits.  Formatting characters are
// not accepted; callers must strip punctuation before validating.
func ValidCPF(s string) bool {
	if len(s) != 11 {
		return false
	}
	digits := make([]int, 11)
	allSame := true
	for i := 0; i < 11; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		digits[i] = int(c - '0')
		if digits[i] != digits[0] {
			allSame = false
		}
	}
	if allSame {
		return false
	}
	if cpfCheckDigit(digits, 9) != digits[9] {
		return false
	}
	return cpfCheckDigit(digits, 10) == digits[10]
}

// cpfCheckDigit computes the check digit over the first n digits using
// descending weights starting at n+1.  A remainder below 2 maps to 0.
func cpfCheckDigit(digits []int, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += digits[i] * (n + 1 - i)
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}
