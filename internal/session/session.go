// Package session хранит состояние оформления продажи для каждого оператора.
//
// Сессия эфемерна: она живёт только в памяти шлюза и не переживает его
// перезапуск. Мьютекс сессии сериализует действия оператора — два
// конкурирующих запроса по одной кассе никогда не мутируют корзину
// одновременно.
package session

import (
	"context"
	"sync"

	"puntoventa/internal/cart"
	"puntoventa/internal/catalog"
	"puntoventa/internal/model"
)

// SalesAPI описывает контракт отправки продажи, используемый сессией.
type SalesAPI interface {
	ProcessSale(ctx context.Context, token string, req model.SaleRequest) (*model.Sale, error)
}

// Session — состояние одной сессии оформления: корзина, выбранный клиент,
// способ оплаты и буфер сканера.
type Session struct {
	mu         sync.Mutex
	cart       *cart.Cart
	clientID   string
	payment    model.PaymentMethod
	scanBuffer string
}

// View — снимок сессии для отдачи наружу.
type View struct {
	Lines    []cart.Line         `json:"items"`
	Totals   cart.Totals         `json:"totales"`
	ClientID string              `json:"cliente_id,omitempty"`
	Payment  model.PaymentMethod `json:"metodo_pago"`
}

// New создаёт пустую сессию со способом оплаты по умолчанию.
func New() *Session {
	return &Session{
		cart:    cart.New(),
		payment: model.DefaultPaymentMethod,
	}
}

// Scan сопоставляет код с каталогом и добавляет найденный вариант в корзину.
// Буфер сканера очищается после каждой попытки, удачной или нет: поле ввода
// готово к следующему коду сразу, а ошибка показывается отдельно.
func (s *Session) Scan(code string, idx *catalog.Index) (model.CatalogVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scanBuffer = code
	defer func() { s.scanBuffer = "" }()

	v, err := idx.Resolve(code)
	if err != nil {
		return model.CatalogVariant{}, err
	}
	if err := s.cart.Add(v); err != nil {
		return model.CatalogVariant{}, err
	}

	return v, nil
}

// Adjust изменяет количество строки корзины на delta.
func (s *Session) Adjust(variantID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Adjust(variantID, delta)
}

// Remove удаляет строку корзины.
func (s *Session) Remove(variantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(variantID)
}

// SetClient выбирает клиента продажи. Пустая строка — consumidor final.
func (s *Session) SetClient(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientID = clientID
}

// SetPayment выбирает способ оплаты.
func (s *Session) SetPayment(method model.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payment = method
}

// Snapshot возвращает снимок текущего состояния сессии.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	return View{
		Lines:    s.cart.Lines(),
		Totals:   s.cart.Totals(),
		ClientID: s.clientID,
		Payment:  s.payment,
	}
}

// Checkout собирает продажу из корзины и отправляет её во внешний API.
// Принятая продажа — единственный триггер очистки состояния: корзина,
// буфер сканера и клиент сбрасываются, способ оплаты возвращается к
// значению по умолчанию. Отклонённая продажа оставляет всё нетронутым,
// чтобы оператор повторил попытку.
func (s *Session) Checkout(ctx context.Context, token string, api SalesAPI) (*model.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := cart.BuildSaleRequest(s.cart, s.clientID, s.payment)
	if err != nil {
		return nil, err
	}

	sale, err := api.ProcessSale(ctx, token, *req)
	if err != nil {
		return nil, err
	}

	s.cart.Clear()
	s.scanBuffer = ""
	s.clientID = ""
	s.payment = model.DefaultPaymentMethod
	return sale, nil
}

// Clear отбрасывает корзину и буфер сканера по явной команде оператора.
// Выбранный клиент и способ оплаты сохраняются.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.scanBuffer = ""
}

// Store выдаёт сессию по идентификатору оператора, создавая её по требованию.
// Записи не вытесняются: штат операторов ограничен, и сессии живут до
// перезапуска шлюза. Для непрозрачного токена без claims ключом служит сам
// токен, так что его ротация оставляет осиротевшую пустую сессию в памяти.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore создаёт пустое хранилище сессий.
func NewStore() *Store {
	return &Store{
		sessions: map[string]*Session{},
	}
}

// Get возвращает сессию оператора, создавая новую при первом обращении.
func (st *Store) Get(userID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[userID]
	if !ok {
		s = New()
		st.sessions[userID] = s
	}
	return s
}
