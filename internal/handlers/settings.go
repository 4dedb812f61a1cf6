package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/logging"
	"github.com/mstepanov/dropmate/internal/models"
	"github.com/mstepanov/dropmate/internal/mykafka"
	"github.com/mstepanov/dropmate/internal/vault"
)

type SettingsHandler struct {
	DB       *gorm.DB
	VaultKey []byte
	Producer *mykafka.Producer
}

type vaultRow struct {
	SupplierName string
	Username     string
	Unreadable   bool
}

func (h *SettingsHandler) SettingsPage(c echo.Context) error {
	return h.renderSettings(c, http.StatusOK, "", "")
}

func (h *SettingsHandler) renderSettings(c echo.Context, status int, flash, errMsg string) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	var stores []models.EbayStore
	if err := h.DB.Where("user_id = ?", user.ID).Order("id ASC").Find(&stores).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var entries []models.SupplierVault
	if err := h.DB.Where("user_id = ?", user.ID).Order("id ASC").Find(&entries).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	rows := make([]vaultRow, 0, len(entries))
	for _, e := range entries {
		row := vaultRow{SupplierName: e.SupplierName, Username: e.Username}
		// Decrypt to verify the entry is still readable under the current
		// key; the plaintext itself never reaches the template.
		if _, err := vault.Decrypt(e.EncryptedPassword, h.VaultKey); err != nil {
			if errors.Is(err, vault.ErrDecrypt) {
				row.Unreadable = true
				logging.FromContext(c.Request().Context()).Warn("vault_entry_unreadable", "vault_id", e.ID)
			} else {
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
			}
		}
		rows = append(rows, row)
	}

	return c.Render(status, "settings.html", map[string]any{
		"User":         user,
		"Stores":       stores,
		"VaultEntries": rows,
		"Flash":        flash,
		"Error":        errMsg,
	})
}

func (h *SettingsHandler) ConnectStore(c echo.Context) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	storeName := strings.TrimSpace(c.FormValue("store_name"))
	ebayUsername := strings.TrimSpace(c.FormValue("ebay_username"))
	if storeName == "" || ebayUsername == "" {
		return h.renderSettings(c, http.StatusBadRequest, "", "Store name and eBay username are required.")
	}

	store := models.EbayStore{
		UserID:       user.ID,
		StoreName:    storeName,
		EbayUsername: ebayUsername,
	}
	if err := h.DB.Create(&store).Error; err != nil {
		logging.FromContext(c.Request().Context()).Error("store_create_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "vault_events", user.ID, map[string]any{
		"type":     "store_connected",
		"user_id":  user.ID,
		"store_id": store.ID,
	})

	return h.renderSettings(c, http.StatusOK, "Store connected.", "")
}

// SaveVaultEntry stores a supplier login. The password is encrypted before it
// touches the database; the plaintext is not logged or echoed back.
func (h *SettingsHandler) SaveVaultEntry(c echo.Context) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	storeID, err := strconv.Atoi(c.FormValue("ebay_store_id"))
	if err != nil {
		return h.renderSettings(c, http.StatusBadRequest, "", "Pick a store to attach the credential to.")
	}
	supplierName := strings.TrimSpace(c.FormValue("supplier_name"))
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if supplierName == "" || password == "" {
		return h.renderSettings(c, http.StatusBadRequest, "", "Supplier name and password are required.")
	}

	var store models.EbayStore
	if err := h.DB.Where("id = ? AND user_id = ?", storeID, user.ID).First(&store).Error; err != nil {
		return h.renderSettings(c, http.StatusBadRequest, "", "Unknown store.")
	}

	encrypted, err := vault.Encrypt(password, h.VaultKey)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("vault_encrypt_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	entry := models.SupplierVault{
		UserID:            user.ID,
		EbayStoreID:       store.ID,
		SupplierName:      supplierName,
		Username:          username,
		EncryptedPassword: encrypted,
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		logging.FromContext(c.Request().Context()).Error("vault_create_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "vault_events", user.ID, map[string]any{
		"type":     "vault_entry_saved",
		"user_id":  user.ID,
		"vault_id": entry.ID,
		"supplier": entry.SupplierName,
	})

	return h.renderSettings(c, http.StatusOK, "Supplier credential saved.", "")
}
