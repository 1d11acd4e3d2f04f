package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/config"
)

type MidtransService struct {
	serverKey string
	baseURL   string
	client    *http.Client
}

func NewMidtransService() *MidtransService {
	cfg := config.GetConfig()

	return &MidtransService{
		serverKey: cfg.Midtrans.ServerKey,
		baseURL:   cfg.Midtrans.BaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type PaymentLinkResult struct {
	OrderID       string `json:"order_id"`
	PaymentLinkID string `json:"payment_link_id"`
	PaymentURL    string `json:"payment_url"`
}

type paymentLinkRequest struct {
	TransactionDetails struct {
		OrderID     string  `json:"order_id"`
		GrossAmount float64 `json:"gross_amount"`
	} `json:"transaction_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Phone     string `json:"phone"`
	} `json:"customer_details"`
	ItemDetails []struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	} `json:"item_details"`
}

type paymentLinkResponse struct {
	OrderID       string `json:"order_id"`
	PaymentLinkID string `json:"payment_link_id"`
	PaymentURL    string `json:"payment_url"`
}

type MidtransTransactionStatus struct {
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`
	Currency          string `json:"currency"`
}

func (m *MidtransService) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(m.serverKey+":"))
}

// CreatePaymentLink membuat payment link untuk satu produk
func (m *MidtransService) CreatePaymentLink(orderID string, amount float64, customerName, customerPhone, productName string) (*PaymentLinkResult, error) {
	reqBody := paymentLinkRequest{}
	reqBody.TransactionDetails.OrderID = orderID
	reqBody.TransactionDetails.GrossAmount = amount
	reqBody.CustomerDetails.FirstName = customerName
	reqBody.CustomerDetails.Phone = customerPhone
	reqBody.ItemDetails = append(reqBody.ItemDetails, struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	}{Name: productName, Price: amount, Quantity: 1})

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, m.baseURL+"/v1/payment-links", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", m.authHeader())

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("midtrans API error: %s", string(body))
	}

	var linkResp paymentLinkResponse
	if err := json.Unmarshal(body, &linkResp); err != nil {
		return nil, err
	}

	return &PaymentLinkResult{
		OrderID:       orderID,
		PaymentLinkID: linkResp.PaymentLinkID,
		PaymentURL:    linkResp.PaymentURL,
	}, nil
}

// GetTransactionStatus mengambil status transaksi dari Midtrans
func (m *MidtransService) GetTransactionStatus(orderID string) (*MidtransTransactionStatus, error) {
	url := fmt.Sprintf("%s/v2/%s/status", m.baseURL, orderID)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", m.authHeader())

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("midtrans API error: %s", string(body))
	}

	var status MidtransTransactionStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, err
	}

	return &status, nil
}
