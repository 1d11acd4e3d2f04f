package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/models"
	"github.com/pius-coder/dropIndrop-v1-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	db       *sql.DB
	midtrans *service.MidtransService
}

func NewPaymentHandler(db *sql.DB, midtrans *service.MidtransService) *PaymentHandler {
	return &PaymentHandler{db: db, midtrans: midtrans}
}

// CreatePayment membuat payment link Midtrans untuk satu produk
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var productName string
	var isActive bool
	err := h.db.QueryRow(`SELECT name, is_active FROM products WHERE id = $1`, req.ProductID).
		Scan(&productName, &isActive)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if !isActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product is no longer available"})
		return
	}

	paymentID := uuid.New()
	orderID := fmt.Sprintf("DROP-%s", paymentID.String()[:18])
	now := time.Now()

	_, err = h.db.Exec(`
		INSERT INTO payments (id, product_id, customer_phone, customer_name, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'IDR', 'pending', $6, $7)
	`, paymentID, req.ProductID, req.CustomerPhone, req.CustomerName, req.Amount, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment"})
		return
	}

	link, err := h.midtrans.CreatePaymentLink(orderID, req.Amount, req.CustomerName, req.CustomerPhone, productName)
	if err != nil {
		log.Printf("PaymentHandler: failed to create payment link: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment link"})
		return
	}

	_, err = h.db.Exec(`
		UPDATE payments SET midtrans_transaction_id = $1, payment_link_url = $2, updated_at = $3 WHERE id = $4
	`, link.OrderID, link.PaymentURL, time.Now(), paymentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment link created successfully",
		"data": gin.H{
			"payment_id":  paymentID,
			"order_id":    link.OrderID,
			"payment_url": link.PaymentURL,
		},
	})
}

// GetPayments mengambil daftar pembayaran dengan filter status opsional
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	query := `
		SELECT id, product_id, customer_phone, customer_name, amount, currency, status,
		       midtrans_transaction_id, payment_link_url, created_at, updated_at
		FROM payments`
	args := []interface{}{}

	if status := c.Query("status"); status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := h.db.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		err := rows.Scan(&p.ID, &p.ProductID, &p.CustomerPhone, &p.CustomerName, &p.Amount,
			&p.Currency, &p.Status, &p.MidtransTransactionID, &p.PaymentLinkURL,
			&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan payment"})
			return
		}
		payments = append(payments, p)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payments retrieved successfully",
		"data":    payments,
	})
}

// PaymentNotification menerima callback status transaksi dari Midtrans
func (h *PaymentHandler) PaymentNotification(c *gin.Context) {
	var notif models.PaymentNotification
	if err := c.ShouldBindJSON(&notif); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Verifikasi status langsung ke Midtrans, jangan percaya payload begitu saja
	status, err := h.midtrans.GetTransactionStatus(notif.OrderID)
	if err != nil {
		log.Printf("PaymentHandler: failed to verify transaction %s: %v", notif.OrderID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to verify transaction"})
		return
	}

	newStatus := mapMidtransStatus(status.TransactionStatus)
	if newStatus == "" {
		c.JSON(http.StatusOK, gin.H{"message": "Notification ignored"})
		return
	}

	result, err := h.db.Exec(`
		UPDATE payments SET status = $1, updated_at = $2 WHERE midtrans_transaction_id = $3
	`, newStatus, time.Now(), notif.OrderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment"})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	log.Printf("PaymentHandler: payment %s updated to %s", notif.OrderID, newStatus)
	c.JSON(http.StatusOK, gin.H{"message": "Notification processed"})
}

func mapMidtransStatus(transactionStatus string) string {
	switch transactionStatus {
	case "settlement", "capture":
		return models.PaymentStatusPaid
	case "deny", "expire", "failure":
		return models.PaymentStatusFailed
	case "cancel":
		return models.PaymentStatusCancelled
	case "pending":
		return models.PaymentStatusPending
	default:
		return ""
	}
}
