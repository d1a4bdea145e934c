package codeable

import "encoding/json"

// Avatar holds the client's avatar URLs in the four sizes the API returns.
type Avatar struct {
	TinyURL   string `json:"tiny_url"`
	SmallURL  string `json:"small_url"`
	MediumURL string `json:"medium_url"`
	LargeURL  string `json:"large_url"`
}

// UnmarshalJSON implements json.Unmarshaler. A non-object avatar is blank.
func (a *Avatar) UnmarshalJSON(data []byte) error {
	*a = Avatar{}
	if !isObject(data) {
		return nil
	}
	type plain Avatar
	if err := json.Unmarshal(data, (*plain)(a)); err != nil {
		*a = Avatar{}
	}
	return nil
}

// ClientInfo describes a platform client as embedded in tasks and transactions.
type ClientInfo struct {
	ID             ID     `json:"id"`
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	LastSignInAt   string `json:"last_sign_in_at"`
	Pro            Truthy `json:"pro"`
	TimezoneOffset Number `json:"timezone_offset"`
	Avatar         Avatar `json:"avatar"`
}

// TransactionTask is the task summary nested in a transaction.
type TransactionTask struct {
	ID                               ID     `json:"id"`
	Kind                             string `json:"kind"`
	Title                            string `json:"title"`
	ParentTaskID                     ID     `json:"parent_task_id"`
	CurrentUserIsPreferredContractor Truthy `json:"current_user_is_preferred_contractor"`
}

// Transaction is a single entry of the transactions feed.
type Transaction struct {
	ID            ID              `json:"id"`
	Description   string          `json:"description"`
	Timestamp     UnixTime        `json:"timestamp"`
	FeePercentage Number          `json:"fee_percentage"`
	FeeAmount     Number          `json:"fee_amount"`
	Task          TransactionTask `json:"task"`
	TaskClient    *ClientInfo     `json:"task_client"`
	CreditAmounts Credit          `json:"credit_amounts"`
	DebitAmounts  Debit           `json:"debit_amounts"`
}

// UnmarshalJSON implements json.Unmarshaler. A task_client that is not an
// object (false, [], a malformed row) decodes to nil.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	var aux struct {
		plain
		TaskClient json.RawMessage `json:"task_client"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Transaction(aux.plain)
	t.TaskClient = decodeObject[ClientInfo](aux.TaskClient)
	return nil
}

// TransactionsPage is one page of the transactions feed. The account
// aggregates are only meaningful on page 2; they are nil when absent or null.
type TransactionsPage struct {
	Transactions    []Transaction `json:"transactions"`
	AverageTaskSize *Number       `json:"average_task_size"`
	Balance         *Number       `json:"balance"`
	Revenue         *Number       `json:"revenue"`
}

// Prices carries the money fields of a task.
type Prices struct {
	ClientFeePercentage       Number `json:"client_fee_percentage"`
	ContractorEarnings        Number `json:"contractor_earnings"`
	ClientPriceAfterDiscounts Number `json:"client_price_after_discounts"`
}

// UnmarshalJSON implements json.Unmarshaler. Non-object prices are zero.
func (p *Prices) UnmarshalJSON(data []byte) error {
	*p = Prices{}
	if !isObject(data) {
		return nil
	}
	type plain Prices
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		*p = Prices{}
	}
	return nil
}

// EventObject is the subject of a task's latest event.
type EventObject struct {
	Timestamp   UnixTime `json:"timestamp"`
	PublishedAt UnixTime `json:"published_at"`
}

// EventUser is the actor of a task's latest event.
type EventUser struct {
	FullName string `json:"full_name"`
}

// Event is the latest activity recorded on a task.
type Event struct {
	Object *EventObject `json:"object"`
	User   *EventUser   `json:"user"`
}

// UnmarshalJSON implements json.Unmarshaler. Object and user are decoded
// independently so a malformed actor keeps the timestamp.
func (e *Event) UnmarshalJSON(data []byte) error {
	var aux struct {
		Object json.RawMessage `json:"object"`
		User   json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Object = decodeObject[EventObject](aux.Object)
	e.User = decodeObject[EventUser](aux.User)
	return nil
}

// Task is a single entry of a filtered task list.
type Task struct {
	ID                               ID          `json:"id"`
	Title                            string      `json:"title"`
	State                            string      `json:"state"`
	Kind                             string      `json:"kind"`
	Estimatable                      Truthy      `json:"estimatable"`
	HiddenByCurrentUser              Truthy      `json:"hidden_by_current_user"`
	PromotedTask                     Truthy      `json:"promoted_task"`
	SubscribedByCurrentUser          Truthy      `json:"subscribed_by_current_user"`
	FavoredByCurrentUser             Truthy      `json:"favored_by_current_user"`
	CurrentUserIsPreferredContractor Truthy      `json:"current_user_is_preferred_contractor"`
	Prices                           Prices      `json:"prices"`
	Client                           *ClientInfo `json:"client"`
	LastEvent                        *Event      `json:"last_event"`
}

// UnmarshalJSON implements json.Unmarshaler. Nested client and last_event
// values that are not objects decode to nil.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var aux struct {
		plain
		Client    json.RawMessage `json:"client"`
		LastEvent json.RawMessage `json:"last_event"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Task(aux.plain)
	t.Client = decodeObject[ClientInfo](aux.Client)
	t.LastEvent = decodeObject[Event](aux.LastEvent)
	return nil
}
