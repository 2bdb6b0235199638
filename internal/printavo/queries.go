package printavo

const (
	// maxQueryCost is the complexity ceiling Printavo enforces per query.
	// Requests whose estimated cost exceeds this are rejected server-side.
	maxQueryCost = 25000

	// orderNodeCost is the observed complexity cost of one order node with
	// its nested contact, addresses, line items and fees.
	orderNodeCost = 4500

	// customerNodeCost is the observed complexity cost of one flat customer node.
	customerNodeCost = 800

	// defaultOrderPageSize keeps order queries under the complexity ceiling.
	defaultOrderPageSize = 5

	// defaultCustomerPageSize keeps customer queries under the complexity ceiling.
	defaultCustomerPageSize = 25
)

// estimatedCost returns the estimated complexity cost of fetching pageSize
// nodes that each cost nodeCost units.
func estimatedCost(nodeCost, pageSize int) int {
	return nodeCost * pageSize
}

const ordersQuery = `
query Orders($first: Int!, $after: String, $since: ISO8601DateTime) {
  orders(first: $first, after: $after, updatedSince: $since, sortOn: UPDATED_AT) {
    pageInfo {
      hasNextPage
      endCursor
    }
    nodes {
      id
      visualId
      nickname
      notes
      deliveryMethod
      createdAt
      updatedAt
      dueDate
      customerDueDate
      productionDueDate
      invoiceDate
      paymentDueDate
      customerId
      status {
        id
        name
      }
      contact {
        fullName
        email
        phone
      }
      billingAddress {
        name
        address1
        address2
        city
        state
        zip
        country
      }
      shippingAddress {
        name
        address1
        address2
        city
        state
        zip
        country
      }
      lineItems {
        id
        styleNumber
        description
        color
        category
        quantity
        unitCost
        taxable
      }
      fees {
        id
        description
        amount
      }
      subtotal
      salesTax
      discount
      total
      amountPaid
      amountOutstanding
    }
  }
}`

const orderQuery = `
query Order($id: ID!) {
  order(id: $id) {
    id
    visualId
    nickname
    notes
    deliveryMethod
    createdAt
    updatedAt
    dueDate
    customerDueDate
    productionDueDate
    invoiceDate
    paymentDueDate
    customerId
    status {
      id
      name
    }
    contact {
      fullName
      email
      phone
    }
    billingAddress {
      name
      address1
      address2
      city
      state
      zip
      country
    }
    shippingAddress {
      name
      address1
      address2
      city
      state
      zip
      country
    }
    lineItems {
      id
      styleNumber
      description
      color
      category
      quantity
      unitCost
      taxable
    }
    fees {
      id
      description
      amount
    }
    subtotal
    salesTax
    discount
    total
    amountPaid
    amountOutstanding
  }
}`

const customersQuery = `
query Customers($first: Int!, $after: String, $since: ISO8601DateTime) {
  customers(first: $first, after: $after, updatedSince: $since, sortOn: UPDATED_AT) {
    pageInfo {
      hasNextPage
      endCursor
    }
    nodes {
      id
      firstName
      lastName
      company
      email
      phone
      notes
      createdAt
      updatedAt
      billingAddress {
        name
        address1
        address2
        city
        state
        zip
        country
      }
      shippingAddress {
        name
        address1
        address2
        city
        state
        zip
        country
      }
    }
  }
}`
