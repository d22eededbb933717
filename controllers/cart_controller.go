package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"cart-service/backend"
	"cart-service/cart"
	"cart-service/checkout"
	"cart-service/config"
	"cart-service/middlewares"
	"cart-service/models"
	"cart-service/rabbitmq"

	"github.com/gin-gonic/gin"
)

var (
	cfg       *config.Config
	store     *cart.Store
	assembler *checkout.Assembler
	addresses backend.AddressLookup
	orders    backend.OrderSubmitter
	rabbitMQ  *rabbitmq.RabbitMQ
)

func Setup(c *config.Config, s *cart.Store, a *checkout.Assembler, lookup backend.AddressLookup, submitter backend.OrderSubmitter) {
	cfg = c
	store = s
	assembler = a
	addresses = lookup
	orders = submitter
}

func SetRabbitMQ(rmq *rabbitmq.RabbitMQ) {
	rabbitMQ = rmq
}

func currentUser(c *gin.Context) (int, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	return userID.(int), true
}

func stateResponse(state models.CartState) models.CartState {
	if state.Items == nil {
		state.Items = []models.CartItem{}
	}
	return state
}

func GetCart(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCartOperation("view", status)
	}()
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stateResponse(store.Snapshot(userID)))
}

func AddItem(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCartOperation("add", status)
	}()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// every add is a single unit; repeated adds bump the quantity
	state := store.Dispatch(userID, cart.AddItem{Item: models.CartItem{
		ID:       req.ID,
		Name:     req.Name,
		Price:    req.Price,
		Quantity: 1,
		Image:    req.Image,
	}})

	c.JSON(http.StatusOK, stateResponse(state))
}

func RemoveItem(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCartOperation("remove", status)
	}()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	// removing an absent id leaves the cart unchanged
	state := store.Dispatch(userID, cart.RemoveItem{ID: c.Param("id")})
	c.JSON(http.StatusOK, stateResponse(state))
}

func UpdateQuantity(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCartOperation("update_quantity", status)
	}()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := store.Dispatch(userID, cart.UpdateQuantity{
		ID:       c.Param("id"),
		Quantity: req.Quantity,
	})
	c.JSON(http.StatusOK, stateResponse(state))
}

func Checkout(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCartOperation("checkout", status)
	}()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var form checkout.ShippingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if form.Email == "" {
		form.Email = "guest@example.com"
	}
	if form.PaymentMethod == "" {
		form.PaymentMethod = "cod"
	}

	// the snapshot and the submit happen in this handler turn; later cart
	// mutations cannot change what gets sent
	snapshot := store.Snapshot(userID)
	if len(snapshot.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	ctx := c.Request.Context()
	names, err := resolveAddressNames(c, form)
	if err != nil {
		log.Printf("Failed to resolve address names: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not resolve shipping address"})
		return
	}

	data, err := assembler.Assemble(snapshot, form, names, time.Now().UTC())
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not assemble order"})
		return
	}

	for _, g := range data.Goods {
		if _, err := strconv.Atoi(g.GoodID); err != nil {
			log.Printf("Non-numeric cart id %q will be sent as good id 0", g.GoodID)
			middlewares.RecordUnparsableGoodID()
		}
	}

	if err := orders.CreateOrder(ctx, data); err != nil {
		// the cart stays intact so the user can retry
		log.Printf("Order submission failed for user %d: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Order submission failed"})
		return
	}

	store.Dispatch(userID, cart.Clear{})

	c.JSON(http.StatusCreated, gin.H{
		"subtotal":     snapshot.Total,
		"shipping_fee": data.TotalPrice - snapshot.Total,
		"total":        data.TotalPrice,
	})

	if rabbitMQ != nil {
		event := models.CheckoutEvent{
			UserID:    userID,
			Type:      "submitted",
			Total:     data.TotalPrice,
			ItemCount: len(data.Goods),
			Occurred:  data.Date,
		}

		priority := 5
		if data.TotalPrice > cfg.FreeShippingOver { // large orders first
			priority = 9
		}

		if err := rabbitMQ.PublishCheckoutEvent(event, priority); err != nil {
			log.Printf("Failed to publish checkout event: %v", err)
		}

		event.Type = "reconcile"
		delay := time.Duration(cfg.PaymentCheckDelay) * time.Minute
		if err := rabbitMQ.PublishDelayedEvent(event, delay); err != nil {
			log.Printf("Failed to publish delayed reconcile event: %v", err)
		}
	}
}

func resolveAddressNames(c *gin.Context, form checkout.ShippingForm) (checkout.AddressNames, error) {
	ctx := c.Request.Context()

	provinces, err := addresses.GetProvinces(ctx)
	if err != nil {
		return checkout.AddressNames{}, err
	}
	districts, err := addresses.GetDistricts(ctx, form.ProvinceID)
	if err != nil {
		return checkout.AddressNames{}, err
	}
	wards, err := addresses.GetWards(ctx, form.DistrictID)
	if err != nil {
		return checkout.AddressNames{}, err
	}

	return checkout.AddressNames{
		Province: backend.FindName(provinces, form.ProvinceID),
		District: backend.FindName(districts, form.DistrictID),
		Ward:     backend.FindName(wards, form.WardID),
	}, nil
}

// HandleDeadLetter lets operators report a poisoned checkout message.
func HandleDeadLetter(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCartOperation("dead_letter", status)
	}()

	var deadLetter struct {
		UserID int    `json:"user_id"`
		Reason string `json:"reason"`
	}

	if err := c.ShouldBindJSON(&deadLetter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Handling dead letter for user %d: %s", deadLetter.UserID, deadLetter.Reason)

	c.JSON(http.StatusOK, gin.H{"message": "Dead letter processed"})
}
