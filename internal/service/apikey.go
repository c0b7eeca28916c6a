package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	keyLetters = "abcdefghijklmnopqrstuvwxyz"
	keyDigits  = "0123456789"
	keySymbols = "!@#$%^&*"
)

// GenerateCompactKey 生成紧凑 API Key：4 个小写字母 + 3 个数字 + 2 个符号，随机打乱
func GenerateCompactKey() (string, error) {
	chars := make([]byte, 0, 9)
	for i := 0; i < 4; i++ {
		c, err := randomChar(keyLetters)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for i := 0; i < 3; i++ {
		c, err := randomChar(keyDigits)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for i := 0; i < 2; i++ {
		c, err := randomChar(keySymbols)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Fisher-Yates 洗牌
	for i := len(chars) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars), nil
}

// GenerateAuthToken 生成 32 字节随机令牌的 hex 表示
func GenerateAuthToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateOTP 生成 4 位数字验证码（1000-9999）
func GenerateOTP() (string, error) {
	n, err := randomInt(9000)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 1000+n), nil
}

func randomChar(alphabet string) (byte, error) {
	idx, err := randomInt(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[idx], nil
}

func randomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("generate random failed: %w", err)
	}
	return int(n.Int64()), nil
}
