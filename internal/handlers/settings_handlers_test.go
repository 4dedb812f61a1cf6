package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/models"
	"github.com/mstepanov/dropmate/internal/vault"
)

func newSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{DB: db, VaultKey: vault.DeriveKey("test-vault-key")}
}

func TestConnectStore(t *testing.T) {
	db := initTestDB(t)
	e := newTestEcho(t)
	h := newSettingsHandler(db)
	user := seedUser(t, db, "seller@example.com", "password123")

	form := url.Values{"store_name": {"My Gadget Shop"}, "ebay_username": {"gadget_seller_uk"}}
	rec, c := doFormRequest(e, http.MethodPost, "/settings/stores", form)
	c.Set(UserIDKey, user.ID)
	require.NoError(t, h.ConnectStore(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var store models.EbayStore
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&store).Error)
	require.Equal(t, "My Gadget Shop", store.StoreName)
	require.Equal(t, "gadget_seller_uk", store.EbayUsername)
}

func TestSaveVaultEntryNeverStoresPlaintext(t *testing.T) {
	db := initTestDB(t)
	e := newTestEcho(t)
	h := newSettingsHandler(db)
	user := seedUser(t, db, "seller@example.com", "password123")

	store := models.EbayStore{UserID: user.ID, StoreName: "Shop", EbayUsername: "seller"}
	require.NoError(t, db.Create(&store).Error)

	form := url.Values{
		"ebay_store_id": {"1"},
		"supplier_name": {"AliExpress"},
		"username":      {"supplier-login"},
		"password":      {"supplier-secret"},
	}
	rec, c := doFormRequest(e, http.MethodPost, "/settings/vault", form)
	c.Set(UserIDKey, user.ID)
	require.NoError(t, h.SaveVaultEntry(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var entry models.SupplierVault
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
	require.NotEmpty(t, entry.EncryptedPassword)
	require.NotContains(t, entry.EncryptedPassword, "supplier-secret")

	plaintext, err := vault.Decrypt(entry.EncryptedPassword, h.VaultKey)
	require.NoError(t, err)
	require.Equal(t, "supplier-secret", plaintext)

	// The page never echoes the password back.
	require.NotContains(t, rec.Body.String(), "supplier-secret")
}

func TestSaveVaultEntryUnknownStore(t *testing.T) {
	db := initTestDB(t)
	e := newTestEcho(t)
	h := newSettingsHandler(db)
	user := seedUser(t, db, "seller@example.com", "password123")

	form := url.Values{
		"ebay_store_id": {"99"},
		"supplier_name": {"AliExpress"},
		"username":      {"supplier-login"},
		"password":      {"supplier-secret"},
	}
	rec, c := doFormRequest(e, http.MethodPost, "/settings/vault", form)
	c.Set(UserIDKey, user.ID)
	require.NoError(t, h.SaveVaultEntry(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	db.Model(&models.SupplierVault{}).Count(&count)
	require.Equal(t, int64(0), count)
}

func TestSettingsPageFlagsUnreadableEntries(t *testing.T) {
	db := initTestDB(t)
	e := newTestEcho(t)
	user := seedUser(t, db, "seller@example.com", "password123")

	store := models.EbayStore{UserID: user.ID, StoreName: "Shop", EbayUsername: "seller"}
	require.NoError(t, db.Create(&store).Error)

	// Written under one key, read under another: the rotated-key case.
	encrypted, err := vault.Encrypt("supplier-secret", vault.DeriveKey("old-key"))
	require.NoError(t, err)
	entry := models.SupplierVault{
		UserID:            user.ID,
		EbayStoreID:       store.ID,
		SupplierName:      "AliExpress",
		Username:          "supplier-login",
		EncryptedPassword: encrypted,
	}
	require.NoError(t, db.Create(&entry).Error)

	h := &SettingsHandler{DB: db, VaultKey: vault.DeriveKey("new-key")}
	rec, c := doFormRequest(e, http.MethodGet, "/settings", nil)
	c.Set(UserIDKey, user.ID)
	require.NoError(t, h.SettingsPage(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "needs re-entry")
}
