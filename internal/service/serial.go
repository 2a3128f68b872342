package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// 业务单号前缀
const (
	orderNoPrefix   = "HD"
	invoiceNoPrefix = "INV"
	ticketNoPrefix  = "TK"
)

func generateOrderNo() string {
	return generateSerialNo(orderNoPrefix)
}

func generateInvoiceNo() string {
	return generateSerialNo(invoiceNoPrefix)
}

func generateTicketNo() string {
	return generateSerialNo(ticketNoPrefix)
}

// generateSerialNo 前缀 + 时间戳到秒 + 6 位随机数
func generateSerialNo(prefix string) string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s%s%s", prefix, now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(strconv.FormatInt(n.Int64(), 10))
	}
	return b.String()
}

func parseUintID(raw string) (uint, bool) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}
